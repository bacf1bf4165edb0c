package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/poskeeper/internal/client/models"
	"github.com/dmitrijs2005/poskeeper/internal/common"
)

// journalLimit is how many attempts the journal command shows.
const journalLimit = 10

var themes = []string{models.ThemeLight, models.ThemeDark, models.ThemeSystem}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.DateTime)
}

// List prints every cached record, grouped by type.
func (a *App) List(ctx context.Context) error {
	res, err := a.shell.GetOfflineData(ctx)
	if err != nil {
		return err
	}
	if !res.Success || res.Data == nil {
		return fmt.Errorf("%w: %s", errRejected, res.Message)
	}
	d := res.Data

	a.mu.Lock()
	defer a.mu.Unlock()

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	if len(d.Sales) > 0 {
		fmt.Fprintln(tw, "SALE\tTOTAL\tPAYMENT\tITEMS\tTIME")
		for _, s := range d.Sales {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", s.ID, s.Total.StringFixed(2), s.PaymentMethod, len(s.Items), formatTime(&s.Timestamp))
		}
		fmt.Fprintln(tw)
	}
	if len(d.Customers) > 0 {
		fmt.Fprintln(tw, "CUSTOMER\tNAME\tPHONE\tEMAIL")
		for _, c := range d.Customers {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Phone, c.Email)
		}
		fmt.Fprintln(tw)
	}
	if len(d.Products) > 0 {
		fmt.Fprintln(tw, "PRODUCT\tNAME\tPRICE\tSTOCK\tSTATUS")
		for _, p := range d.Products {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock, p.Status)
		}
		fmt.Fprintln(tw)
	}
	if len(d.Workers) > 0 {
		fmt.Fprintln(tw, "WORKER\tNAME\tROLE\tSHOP")
		for _, w := range d.Workers {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", w.ID, w.Name, w.Role, w.ShopID)
		}
		fmt.Fprintln(tw)
	}
	if len(d.Corrections) > 0 {
		fmt.Fprintln(tw, "CORRECTION\tSALE\tFIELD\tOLD\tNEW\tBY")
		for _, c := range d.Corrections {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.SaleID, c.Field, c.OldValue, c.NewValue, c.CorrectedBy)
		}
		fmt.Fprintln(tw)
	}
	fmt.Fprintf(tw, "%d pending, last saved %s\n", len(d.PendingSync), formatTime(d.LastSync))
	return tw.Flush()
}

func (a *App) Stats(ctx context.Context) error {
	res, err := a.shell.GetOfflineStats(ctx)
	if err != nil {
		return err
	}
	if !res.Success || res.Stats == nil {
		return fmt.Errorf("%w: %s", errRejected, res.Message)
	}
	s := res.Stats

	a.printf("Records: %d (sales %d, customers %d, products %d, workers %d, corrections %d)\n",
		s.TotalRecords, s.Sales, s.Customers, s.Products, s.Workers, s.Corrections)
	a.printf("Pending sync: %d\n", s.PendingSync)
	a.printf("Has pending data: %t\n", s.HasPendingData)
	a.printf("Last saved: %s\n", formatTime(s.LastSync))
	return nil
}

// Clear discards the cache after confirmation. Records not yet pushed are
// lost, so the operator is warned about them.
func (a *App) Clear(ctx context.Context) error {
	if st, err := a.shell.GetOfflineStats(ctx); err == nil && st.Stats != nil && st.Stats.PendingSync > 0 {
		a.printf("Warning: %d record(s) have not been synced yet\n", st.Stats.PendingSync)
	}
	ok, err := GetYesNo(a.reader, "Discard all cached records?", false, a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Cancelled")
		return nil
	}

	res, err := a.shell.ClearOfflineData(ctx)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%w: %s", errRejected, res.Message)
	}
	a.println(res.Message)
	return nil
}

func (a *App) Export(ctx context.Context) error {
	dest, err := GetOptional(a.reader, "Destination file (empty for default)", "", a.out)
	if err != nil {
		return err
	}

	res, err := a.shell.ExportOfflineData(ctx, dest)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%w: %s", errRejected, res.Message)
	}
	a.printf("Exported to %s\n", res.Path)
	return nil
}

func (a *App) currentSettings(ctx context.Context) (models.Settings, error) {
	res, err := a.shell.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	if !res.Success || res.Settings == nil {
		return models.Settings{}, fmt.Errorf("%w: %s", errRejected, res.Message)
	}
	return *res.Settings, nil
}

func (a *App) storeSettings(ctx context.Context, s models.Settings) error {
	res, err := a.shell.SaveSettings(ctx, s)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%w: %s", errRejected, res.Message)
	}
	if res.Settings != nil {
		a.printSettings(*res.Settings)
	}
	return nil
}

func (a *App) printSettings(s models.Settings) {
	a.printf("Theme: %s\nAuto-sync: %t every %d min\nNotifications: %t\n",
		s.Theme, s.AutoSync, s.SyncInterval, s.Notifications)
}

// Settings shows the current settings and prompts for new values. Empty
// answers keep the current value.
func (a *App) Settings(ctx context.Context) error {
	cur, err := a.currentSettings(ctx)
	if err != nil {
		return err
	}
	a.printSettings(cur)

	next := cur
	if next.Theme, err = GetChoice(a.reader, "Theme", themes, cur.Theme, a.out); err != nil {
		return err
	}
	if next.AutoSync, err = GetYesNo(a.reader, "Auto-sync", cur.AutoSync, a.out); err != nil {
		return err
	}
	if next.SyncInterval, err = GetInt(a.reader, "Sync interval, minutes", cur.SyncInterval, a.out); err != nil {
		return err
	}
	if next.Notifications, err = GetYesNo(a.reader, "Notifications", cur.Notifications, a.out); err != nil {
		return err
	}

	if next == cur {
		a.println("No changes")
		return nil
	}
	return a.storeSettings(ctx, next)
}

func (a *App) ToggleAutoSync(ctx context.Context) error {
	cur, err := a.currentSettings(ctx)
	if err != nil {
		return err
	}
	cur.AutoSync = !cur.AutoSync
	return a.storeSettings(ctx, cur)
}

// Check asks the shell to check the network and the backend for health.
func (a *App) Check(ctx context.Context) error {
	res, err := a.shell.CheckConnection(ctx)
	if err != nil {
		return err
	}
	network := "offline"
	if res.Online {
		network = "online"
	}
	a.printf("Network: %s\n", network)

	a.checkOnline(ctx)
	a.printf("Backend: %s\n", a.Mode())
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	rep, err := a.syncer.Run(ctx)
	if errors.Is(err, common.ErrUnauthorized) {
		return fmt.Errorf("%w, run login again", err)
	}
	if err != nil {
		return err
	}
	if rep.Pushed == 0 {
		a.println("Nothing to sync")
		return nil
	}
	a.printf("Pushed %d record(s), %d acknowledged, %d still pending\n", rep.Pushed, rep.Acknowledged, rep.Remaining)
	return nil
}

func (a *App) Journal(ctx context.Context) error {
	res, err := a.shell.ListSyncAttempts(ctx, journalLimit)
	if err != nil {
		return err
	}
	if !res.Success || res.Journal == nil {
		return fmt.Errorf("%w: %s", errRejected, res.Message)
	}
	j := res.Journal

	a.mu.Lock()
	defer a.mu.Unlock()

	fmt.Fprintf(a.out, "Last synced: %s\n", formatTime(j.LastSyncedAt))
	if j.LastError != "" {
		fmt.Fprintf(a.out, "Last error: %s\n", j.LastError)
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ATTEMPT\tSTATE\tSTARTED\tPUSHED\tERROR")
	for _, at := range j.Attempts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", at.ID, at.State, formatTime(&at.StartedAt), at.Pushed, strings.TrimSpace(at.Error))
	}
	return tw.Flush()
}
