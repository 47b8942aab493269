package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dmitrijs2005/apparel/internal/server/models"
)

func (a *App) Items(ctx context.Context) error {
	user, err := a.sessionUser()
	if err != nil {
		return err
	}
	items, err := a.api.Items(ctx, user)
	if err != nil {
		return a.checkSession(err)
	}
	return a.printItems(items)
}

func (a *App) Outfits(ctx context.Context) error {
	user, err := a.sessionUser()
	if err != nil {
		return err
	}
	outfits, err := a.api.Outfits(ctx, user)
	if err != nil {
		return a.checkSession(err)
	}
	if len(outfits) == 0 {
		fmt.Fprintln(a.out, "No outfits")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSEASON\tITEMS")
	for _, o := range outfits {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", o.ID, o.Name, o.Season, len(o.ItemIDs))
	}
	return tw.Flush()
}

func (a *App) Show(ctx context.Context, id string) error {
	if _, err := a.sessionUser(); err != nil {
		return err
	}
	item, err := a.api.Item(ctx, id)
	if err != nil {
		return a.checkSession(err)
	}
	b, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(b))
	return nil
}

func (a *App) Search(ctx context.Context, keyword string) error {
	user, err := a.sessionUser()
	if err != nil {
		return err
	}
	items, err := a.api.Search(ctx, user, keyword)
	if err != nil {
		return a.checkSession(err)
	}
	return a.printItems(items)
}

func (a *App) Filter(ctx context.Context, field, keyword string) error {
	user, err := a.sessionUser()
	if err != nil {
		return err
	}
	items, err := a.api.Filter(ctx, user, field, keyword)
	if err != nil {
		return a.checkSession(err)
	}
	return a.printItems(items)
}

func (a *App) printItems(items []models.Item) error {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No items")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tBRAND\tSIZE\tRATING\tDESCRIPTION")
	for _, it := range items {
		rating := "-"
		if it.Rating != nil {
			rating = strconv.Itoa(*it.Rating)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", it.ID, it.Category, it.Brand, it.Size.String(), rating, it.Description)
	}
	return tw.Flush()
}
