package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thabitrevor/wedding/internal/common"
	"github.com/thabitrevor/wedding/internal/server/notify"
	"github.com/thabitrevor/wedding/internal/server/services"
)

const (
	msgRSVPThanks       = "Your RSVP has been submitted successfully. We're looking forward to celebrating with you!"
	msgEmailSent        = "RSVP confirmation email sent successfully"
	msgEmailFailed      = "RSVP saved successfully, but email notification failed to send"
	msgEmailRequired    = "Email and name are required"
	msgEmailProcessFail = "Failed to process RSVP email"
	msgAttendingMissing = "Please let us know whether you will be attending"
	msgPartnerMissing   = "Please let us know whether you will be bringing a partner"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type rsvpRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Attending       *bool  `json:"attending"`
	BringingPartner *bool  `json:"bringingPartner"`
	PartnerName     string `json:"partnerName"`
	Message         string `json:"message"`
}

// input rejects a body that leaves out a yes/no answer. A missing
// "attending" must not be stored as a decline.
func (r rsvpRequest) input() (services.RSVPInput, error) {
	in := services.RSVPInput{
		Name:        r.Name,
		Email:       r.Email,
		PartnerName: r.PartnerName,
		Message:     r.Message,
	}
	if r.Attending == nil {
		return in, &services.RSVPError{Kind: services.KindValidation, Message: msgAttendingMissing}
	}
	in.Attending = *r.Attending
	if in.Attending {
		if r.BringingPartner == nil {
			return in, &services.RSVPError{Kind: services.KindValidation, Message: msgPartnerMissing}
		}
		in.BringingPartner = *r.BringingPartner
	}
	return in, nil
}

func (s *Server) submitRSVP(c *gin.Context) {
	var req rsvpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": services.KindValidation.String(), "message": "Invalid request body"})
		return
	}

	in, err := req.input()
	if err != nil {
		s.writeRSVPError(c, err)
		return
	}

	conf, err := s.deps.RSVPs.Submit(c.Request.Context(), in)
	if err != nil {
		s.writeRSVPError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": msgRSVPThanks, "rsvp": conf})
}

func (s *Server) writeRSVPError(c *gin.Context, err error) {
	var re *services.RSVPError
	if !errors.As(err, &re) {
		s.logger.Error(c.Request.Context(), "unexpected rsvp error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": common.ErrorInternal.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch re.Kind {
	case services.KindValidation:
		status = http.StatusBadRequest
	case services.KindDuplicate:
		status = http.StatusConflict
	case services.KindStoreCommunication:
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": re.Kind.String(), "message": re.Message})
}

// sendRSVPEmail renders and sends a confirmation on request. A failure at
// the mail provider still answers 200, since the RSVP itself is stored.
func (s *Server) sendRSVPEmail(c *gin.Context) {
	var m notify.Message
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgEmailProcessFail, "details": err.Error()})
		return
	}
	if m.Email == "" || m.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgEmailRequired})
		return
	}
	if s.deps.Mailer == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgEmailProcessFail, "details": "mail is not configured"})
		return
	}

	id, err := s.deps.Mailer.Send(c.Request.Context(), m)
	if err != nil {
		var de *notify.DeliveryError
		if errors.As(err, &de) && providerRejected(de) {
			s.logger.Warn(c.Request.Context(), "email sending failed but RSVP was saved", "email", m.Email, "error", err)
			c.JSON(http.StatusOK, gin.H{
				"success":    true,
				"message":    msgEmailFailed,
				"recipient":  m.Email,
				"attending":  m.Attending,
				"emailError": fmt.Sprintf("Email service error: %d", de.Status),
			})
			return
		}
		s.logger.Error(c.Request.Context(), "error in send-rsvp-email", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgEmailProcessFail, "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   msgEmailSent,
		"recipient": m.Email,
		"attending": m.Attending,
		"emailId":   id,
	})
}

// providerRejected reports a non-2xx answer from the mail provider. A 2xx
// whose body could not be read is not a rejection.
func providerRejected(de *notify.DeliveryError) bool {
	return de.Status != 0 && (de.Status < 200 || de.Status > 299)
}

func (s *Server) listPhotos(c *gin.Context) {
	list, err := s.deps.Photos.ListApproved(c.Request.Context())
	if err != nil {
		s.logger.Error(c.Request.Context(), "list photos", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load photos"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": list})
}

func (s *Server) uploadPhoto(c *gin.Context) {
	if s.maxUpload > 0 {
		// room for the multipart envelope and the uploader field
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+1<<20)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": services.PhotoSizeMessage(s.maxUpload)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select a photo to upload."})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read the uploaded file."})
		return
	}
	defer f.Close()

	photo, err := s.deps.Photos.Upload(c.Request.Context(), services.PhotoUpload{
		FileName:     fh.Filename,
		MimeType:     fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Body:         f,
		UploaderName: c.PostForm("uploaderName"),
	})
	if err != nil {
		var pe *services.PhotoError
		if errors.As(err, &pe) {
			c.JSON(http.StatusBadRequest, gin.H{"error": pe.Message})
			return
		}
		s.logger.Error(c.Request.Context(), "upload photo", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed. Please try again."})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Thank you! Your photo will appear in the gallery once approved.",
		"photo": gin.H{
			"id":           photo.ID,
			"fileName":     photo.FileName,
			"uploaderName": photo.UploaderName,
			"uploadedAt":   photo.UploadedAt,
		},
	})
}

type loginRequest struct {
	Password string `json:"password" binding:"required"`
}

func (s *Server) adminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password is required"})
		return
	}

	token, err := s.deps.Admin.Login(c.Request.Context(), req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) listRSVPs(c *gin.Context) {
	list, err := s.deps.RSVPs.List(c.Request.Context())
	if err != nil {
		s.logger.Error(c.Request.Context(), "list rsvps", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	out := make([]rsvpView, 0, len(list))
	for _, r := range list {
		out = append(out, newRSVPView(r))
	}
	c.JSON(http.StatusOK, gin.H{"rsvps": out})
}

func (s *Server) rsvpStats(c *gin.Context) {
	st, err := s.deps.RSVPs.Stats(c.Request.Context())
	if err != nil {
		s.logger.Error(c.Request.Context(), "rsvp stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, st)
}
