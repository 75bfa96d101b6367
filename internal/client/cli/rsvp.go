package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/thabitrevor/wedding/internal/client/client"
)

// RSVP walks the guest through the invitation form and submits it. Server
// messages, success or failure, are printed as they are.
func (a *App) RSVP(ctx context.Context) error {
	req, err := a.readRSVP()
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	res, err := a.api.SubmitRSVP(ctx, *req)
	if err != nil {
		a.printAPIError(err)
		return err
	}

	fmt.Fprintln(a.out, "Thank You!")
	fmt.Fprintln(a.out, res.Message)
	return nil
}

func (a *App) readRSVP() (*client.RSVPRequest, error) {
	name, err := GetSimpleText(a.reader, "Your full name", a.out)
	if err != nil {
		return nil, err
	}
	email, err := GetSimpleText(a.reader, "Your email address", a.out)
	if err != nil {
		return nil, err
	}

	req := &client.RSVPRequest{Name: name, Email: email}

	req.Attending, err = GetYesNo(a.reader, "Will you be attending?", a.out)
	if err != nil {
		return nil, err
	}
	if req.Attending {
		req.BringingPartner, err = GetYesNo(a.reader, "Will you be bringing a partner?", a.out)
		if err != nil {
			return nil, err
		}
		if req.BringingPartner {
			req.PartnerName, err = GetSimpleText(a.reader, "Partner's full name", a.out)
			if err != nil {
				return nil, err
			}
		}
	}

	req.Message, err = GetMultiline(a.reader, "Any message for the couple? (Optional)", a.out)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (a *App) printAPIError(err error) {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		fmt.Fprintln(a.out, apiErr.Error())
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "The wedding server is unavailable. Please try again later.")
	default:
		fmt.Fprintf(a.out, "error: %v\n", err)
	}
}
