package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/thabitrevor/wedding/internal/client/services"
)

func (a *App) Login(ctx context.Context) error {
	password, err := GetPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	defer wipe(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.admin.Login(ctx, password); err != nil {
		fmt.Fprint(a.out, "Login unsuccessful: ")
		a.printAPIError(err)
		return err
	}

	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.admin.Logout()
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Guests(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	guests, err := a.admin.Guests(ctx)
	if err != nil {
		a.printAdminError(err)
		return err
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL\tATTENDING\tPARTNER\tPARTY\tMESSAGE")
	for _, g := range guests {
		attending := "no"
		if g.Attending {
			attending = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", g.Name, g.Email, attending, deref(g.PartnerName), g.PartySize, deref(g.Message))
	}
	return w.Flush()
}

func (a *App) Stats(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	st, err := a.admin.Stats(ctx)
	if err != nil {
		a.printAdminError(err)
		return err
	}

	fmt.Fprintf(a.out, "Responses: %d\nAttending: %d (with partner: %d)\nDeclined:  %d\nHeadcount: %d\n",
		st.Total, st.Attending, st.Partners, st.Declined, st.Headcount)
	return nil
}

func (a *App) printAdminError(err error) {
	if errors.Is(err, services.ErrLoginRequired) {
		fmt.Fprintln(a.out, "Please login first.")
		return
	}
	a.printAPIError(err)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
