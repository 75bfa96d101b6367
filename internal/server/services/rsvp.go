package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/thabitrevor/wedding/internal/common"
	"github.com/thabitrevor/wedding/internal/logging"
	"github.com/thabitrevor/wedding/internal/server/config"
	"github.com/thabitrevor/wedding/internal/server/locks"
	"github.com/thabitrevor/wedding/internal/server/models"
	"github.com/thabitrevor/wedding/internal/server/notify"
	"github.com/thabitrevor/wedding/internal/server/repositories/repomanager"
)

// ErrorKind classifies a failed RSVP submission.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindDuplicate
	KindStoreCommunication
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindStoreCommunication:
		return "store_communication"
	default:
		return "unknown"
	}
}

// RSVPError is returned by Submit. Message can be shown to the guest as is.
type RSVPError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *RSVPError) Error() string { return e.Message }

func (e *RSVPError) Unwrap() error { return e.Err }

// IsKind reports whether err is an *RSVPError of kind k.
func IsKind(err error, k ErrorKind) bool {
	var re *RSVPError
	return errors.As(err, &re) && re.Kind == k
}

const (
	msgMissingFields  = "Please fill in your name and email"
	msgMissingPartner = "Please enter your partner's name"
	msgCheckFailed    = "There was a problem checking your RSVP. Please try again."
	msgInProgress     = "Your RSVP is already being submitted. Please try again in a moment."
	msgSaveFailed     = "There was a problem saving your RSVP. Please try again."
	msgDuplicate      = "This email has already submitted an RSVP. If you submitted incorrect information, please call %s to update your RSVP."
)

// RSVPInput is one guest submission as received from the form.
type RSVPInput struct {
	Name            string
	Email           string
	Attending       bool
	BringingPartner bool
	PartnerName     string
	Message         string
}

// normalize trims every field and lower-cases the email, which is the
// duplicate key.
func (in RSVPInput) normalize() RSVPInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.PartnerName = strings.TrimSpace(in.PartnerName)
	in.Message = strings.TrimSpace(in.Message)
	return in
}

func (in RSVPInput) validate() error {
	if in.Name == "" || in.Email == "" {
		return &RSVPError{Kind: KindValidation, Message: msgMissingFields, Err: common.ErrorValidation}
	}
	if in.withPartner() && in.PartnerName == "" {
		return &RSVPError{Kind: KindValidation, Message: msgMissingPartner, Err: common.ErrorValidation}
	}
	return nil
}

func (in RSVPInput) withPartner() bool { return in.Attending && in.BringingPartner }

func (in RSVPInput) record(now time.Time) *models.RSVP {
	r := &models.RSVP{
		Name:        in.Name,
		Email:       in.Email,
		Attending:   in.Attending,
		SubmittedAt: now,
	}
	if in.withPartner() {
		p := in.PartnerName
		r.PartnerName = &p
	}
	if in.Message != "" {
		m := in.Message
		r.Message = &m
	}
	return r
}

// Confirmation acknowledges a durably stored RSVP. It says nothing about
// whether the confirmation email arrived.
type Confirmation struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Attending   bool      `json:"attending"`
	PartnerName string    `json:"partnerName,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// NotifyObserver sees the outcome of every confirmation attempt. err is nil
// on delivery.
type NotifyObserver func(ctx context.Context, m notify.Message, err error)

// RSVPService runs the RSVP submission workflow: validate, check for an
// earlier RSVP, store, then send the confirmation in the background.
type RSVPService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	notifier      notify.Notifier
	locker        locks.Locker
	logger        logging.Logger
	storeTimeout  time.Duration
	notifyTimeout time.Duration
	couple        string
	observer      NotifyObserver
	now           func() time.Time
	wg            sync.WaitGroup
}

// NewRSVPService wires the workflow. A nil notifier disables confirmations;
// a nil locker means submissions are only guarded by the unique index.
func NewRSVPService(db *sql.DB, m repomanager.RepositoryManager, notifier notify.Notifier,
	locker locks.Locker, logger logging.Logger, cfg *config.Config) *RSVPService {
	if locker == nil {
		locker = locks.NoopLocker{}
	}
	return &RSVPService{
		db:            db,
		repomanager:   m,
		notifier:      notifier,
		locker:        locker,
		logger:        logger,
		storeTimeout:  cfg.StoreTimeout,
		notifyTimeout: cfg.NotifyTimeout,
		couple:        cfg.CoupleNames,
		now:           time.Now,
	}
}

// SetNotifyObserver installs o. Call before the service starts serving.
func (s *RSVPService) SetNotifyObserver(o NotifyObserver) { s.observer = o }

// Submit validates and stores one RSVP. The returned error, if any, is an
// *RSVPError. A failed confirmation email never fails Submit.
func (s *RSVPService) Submit(ctx context.Context, input RSVPInput) (*Confirmation, error) {
	in := input.normalize()
	if err := in.validate(); err != nil {
		return nil, err
	}

	storeCtx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	release, err := s.locker.Acquire(storeCtx, in.Email)
	if err != nil {
		if errors.Is(err, locks.ErrLocked) {
			return nil, &RSVPError{Kind: KindStoreCommunication, Message: msgInProgress, Err: err}
		}
		return nil, &RSVPError{Kind: KindStoreCommunication, Message: msgCheckFailed, Err: err}
	}
	defer s.release(ctx, release, in.Email)

	repo := s.repomanager.RSVPs(s.db)

	_, err = repo.FindByEmail(storeCtx, in.Email)
	switch {
	case err == nil:
		return nil, s.duplicate(common.ErrorAlreadyExists)
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Error(ctx, "rsvp duplicate check failed", "email", in.Email, "error", err)
		return nil, &RSVPError{Kind: KindStoreCommunication, Message: msgCheckFailed, Err: err}
	}

	record := in.record(s.now())
	if err := repo.Create(storeCtx, record); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, s.duplicate(err)
		}
		s.logger.Error(ctx, "rsvp insert failed", "email", in.Email, "error", err)
		return nil, &RSVPError{
			Kind:    KindStoreCommunication,
			Message: fmt.Sprintf("%s (%v)", msgSaveFailed, err),
			Err:     err,
		}
	}

	s.logger.Info(ctx, "rsvp stored", "id", record.ID, "email", record.Email, "attending", record.Attending)
	s.notifyAsync(ctx, in)

	c := &Confirmation{
		ID:          record.ID,
		Email:       record.Email,
		Attending:   record.Attending,
		SubmittedAt: record.SubmittedAt,
	}
	if record.PartnerName != nil {
		c.PartnerName = *record.PartnerName
	}
	return c, nil
}

// Wait blocks until every confirmation started so far has finished.
func (s *RSVPService) Wait() { s.wg.Wait() }

// List returns every RSVP in submission order.
func (s *RSVPService) List(ctx context.Context) ([]*models.RSVP, error) {
	ctx, cancel := s.withStoreTimeout(ctx)
	defer cancel()

	list, err := s.repomanager.RSVPs(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing rsvps: %w", err)
	}
	return list, nil
}

// Stats summarises attendance over all RSVPs.
func (s *RSVPService) Stats(ctx context.Context) (*models.RSVPStats, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	st := &models.RSVPStats{Total: len(list)}
	for _, r := range list {
		if !r.Attending {
			st.Declined++
			continue
		}
		st.Attending++
		if r.PartnerName != nil {
			st.Partners++
		}
		st.Headcount += r.PartySize()
	}
	return st, nil
}

func (s *RSVPService) withStoreTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func (s *RSVPService) duplicate(err error) *RSVPError {
	return &RSVPError{Kind: KindDuplicate, Message: fmt.Sprintf(msgDuplicate, s.couple), Err: err}
}

func (s *RSVPService) release(ctx context.Context, release locks.ReleaseFunc, email string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()
	if err := release(ctx); err != nil {
		s.logger.Warn(ctx, "rsvp lock release failed", "email", email, "error", err)
	}
}

// notifyAsync sends the confirmation detached from ctx's cancellation. The
// outcome goes to the log and the observer only.
func (s *RSVPService) notifyAsync(ctx context.Context, in RSVPInput) {
	if s.notifier == nil {
		return
	}

	m := notify.Message{
		Email:     in.Email,
		Name:      in.Name,
		Attending: in.Attending,
		Message:   in.Message,
	}
	if in.withPartner() {
		m.PartnerName = in.PartnerName
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		nctx := context.WithoutCancel(ctx)
		if s.notifyTimeout > 0 {
			var cancel context.CancelFunc
			nctx, cancel = context.WithTimeout(nctx, s.notifyTimeout)
			defer cancel()
		}

		err := s.send(nctx, m)
		if err != nil {
			s.logger.Warn(nctx, "rsvp confirmation not delivered", "email", m.Email, "error", err)
		} else {
			s.logger.Info(nctx, "rsvp confirmation sent", "email", m.Email)
		}
		if s.observer != nil {
			s.observer(nctx, m, err)
		}
	}()
}

func (s *RSVPService) send(ctx context.Context, m notify.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &notify.DeliveryError{Err: fmt.Errorf("notifier panic: %v", r)}
		}
	}()
	return s.notifier.SendRSVPConfirmation(ctx, m)
}
