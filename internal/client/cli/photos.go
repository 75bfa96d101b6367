package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
)

// Photos lists approved guest photos with their download links.
func (a *App) Photos(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	list, err := a.api.ListPhotos(ctx)
	if err != nil {
		a.printAPIError(err)
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No photos yet.")
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UPLOADED\tBY\tFILE\tURL")
	for _, p := range list {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.UploadedAt.Format("2006-01-02 15:04"), p.UploaderName, p.FileName, p.URL)
	}
	return w.Flush()
}
