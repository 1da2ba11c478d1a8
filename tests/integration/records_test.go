package integration

import (
	"context"
	"testing"

	"github.com/DrewBradfordXYZ/logo-objects-go/client"
	"github.com/DrewBradfordXYZ/logo-objects-go/objects"
	"github.com/DrewBradfordXYZ/logo-objects-go/query"
)

func TestGetAll(t *testing.T) {
	ctx := context.Background()
	items := objects.Items(testClient)

	page, err := items.GetAll(ctx, &query.ListOptions{
		Limit: query.Int(5),
		Count: query.Bool(true),
		Sort:  query.SortBy("CODE"),
	})
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(page.Items) > 5 {
		t.Errorf("len(Items) = %d, want at most 5", len(page.Items))
	}
	if page.Count != nil && *page.Count < len(page.Items) {
		t.Errorf("Count = %d, less than the page size %d", *page.Count, len(page.Items))
	}
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	items := objects.Items(testClient)

	page, err := items.GetAll(ctx, &query.ListOptions{Limit: query.Int(1), Fields: []string{"INTERNAL_REFERENCE", "CODE"}})
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(page.Items) == 0 {
		t.Skip("no items to read")
	}
	ref := page.Items[0]["INTERNAL_REFERENCE"]

	rec, err := items.GetByID(ctx, ref, nil)
	if err != nil {
		t.Fatalf("GetByID(%v) error = %v", ref, err)
	}
	if (*rec)["CODE"] != page.Items[0]["CODE"] {
		t.Errorf("CODE = %v, want %v", (*rec)["CODE"], page.Items[0]["CODE"])
	}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	items := objects.Items(testClient)

	page, err := items.GetAll(ctx, &query.ListOptions{Limit: query.Int(1)})
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(page.Items) == 0 {
		t.Skip("no items to search for")
	}
	code, _ := page.Items[0]["CODE"].(string)

	found, err := items.Search(ctx, query.Where("code", code), &query.ListOptions{Limit: query.Int(10)})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(found.Items) == 0 {
		t.Fatalf("Search(code=%q) found nothing", code)
	}
	for _, rec := range found.Items {
		if rec["CODE"] != code {
			t.Errorf("CODE = %v, want %q", rec["CODE"], code)
		}
	}
}

func TestAll(t *testing.T) {
	ctx := context.Background()
	items := objects.Items(testClient)

	recs, err := client.CollectN(items.All(ctx, &query.ListOptions{Limit: query.Int(3)}), 7)
	if err != nil {
		t.Fatalf("CollectN() error = %v", err)
	}
	if len(recs) > 7 {
		t.Errorf("len = %d, want at most 7", len(recs))
	}
}

func TestCreateAndDelete(t *testing.T) {
	skipUnlessWrites(t)
	ctx := context.Background()
	arps := objects.Arps(testClient)

	created, err := arps.Create(ctx, map[string]any{
		"CODE":         "GO-SDK-TEST",
		"TITLE":        "logo-objects-go integration test",
		"ACCOUNT_TYPE": 3,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	ref := (*created)["INTERNAL_REFERENCE"]
	t.Cleanup(func() {
		if err := arps.Delete(context.Background(), ref); err != nil {
			t.Errorf("Delete(%v) error = %v", ref, err)
		}
	})

	if _, err := arps.Patch(ctx, ref, map[string]any{"TITLE": "patched"}); err != nil {
		t.Errorf("Patch() error = %v", err)
	}
}
