package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DrewBradfordXYZ/logo-objects-go/internal/logotest"
	"github.com/DrewBradfordXYZ/logo-objects-go/objects"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func itemsServer(t *testing.T) *logotest.Server {
	t.Helper()
	srv := logotest.New(t)
	srv.Collection("items",
		map[string]any{"CODE": "A", "NAME": "Apple"},
		map[string]any{"CODE": "B", "NAME": "Banana"},
		map[string]any{"CODE": "C", "NAME": "Cherry"},
	)
	return srv
}

func connect(srv *logotest.Server, args ...string) []string {
	return append(args, "--base-url", srv.URL, "--api-key", "k")
}

func TestEntities(t *testing.T) {
	out, err := run(t, "entities")
	require.NoError(t, err)
	require.Contains(t, out, "salesOrders")
	require.Contains(t, out, "ApplyCampaign")

	out, err = run(t, "entities", "-o", "json")
	require.NoError(t, err)
	var got []struct {
		Name       string   `json:"name"`
		Operations []string `json:"operations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, len(objects.All()))
}

func TestOps(t *testing.T) {
	out, err := run(t, "ops", "SALESORDERS")
	require.NoError(t, err)
	require.Contains(t, out, "/salesOrders/{id}/ApplyCampaign")
	require.Contains(t, out, "POST")

	_, err = run(t, "ops", "salesOrder")
	require.ErrorContains(t, err, "Did you mean 'salesOrders'?")
}

func TestQS(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"nothing", nil, ""},
		{"paging", []string{"--limit", "10", "--offset", "20"}, "limit=10&offset=20"},
		{"zero limit is sent", []string{"--limit", "0"}, "limit=0"},
		{"sort", []string{"--sort", "DINFO_PRODORDREF"}, "sort=DINFO_PRODORDREF"},
		{"sort desc", []string{"--sort", "CODE", "--desc"}, "sort=CODE&direction=desc"},
		{"multi sort asc", []string{"--sort", "DATE_,CODE", "--asc"}, "sort=DATE_,CODE&direction=asc"},
		{"fields and count", []string{"--count", "--fields", "CODE,NAME"}, "fields=CODE,NAME&count=true"},
		{"where", []string{"--where", "code=O'NEIL"}, "q=CODE%20eq%20%27O%27%27NEIL%27"},
		{"where number", []string{"--where", "status=1"}, "q=STATUS%20eq%201"},
		{"like", []string{"--like", "auxilCode=test"}, "q=AUXIL_CODE%20like%20%27test%2A%27"},
		{"entity field names", []string{"--entity", "salesOrders", "--where", "ficheNo=SO-1", "--where", "status=1"},
			"q=NUMBER%20eq%20%27SO-1%27%20and%20STATUS%20eq%201"},
		{"raw q joined", []string{"--q", "STATUS eq 1", "--where", "code=A"}, "q=STATUS%20eq%201%20and%20CODE%20eq%20%27A%27"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"qs"}, tt.args...)...)
			require.NoError(t, err)
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("qs = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQS_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"asc and desc", []string{"--sort", "CODE", "--asc", "--desc"}},
		{"bad pair", []string{"--where", "code"}},
		{"unknown entity", []string{"--entity", "nope"}},
		{"bad output", []string{"-o", "yaml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"qs"}, tt.args...)...)
			require.Error(t, err)
		})
	}
}

func TestList(t *testing.T) {
	srv := itemsServer(t)

	out, err := run(t, connect(srv, "list", "items", "--limit", "2", "--sort", "CODE", "--desc", "-o", "json")...)
	require.NoError(t, err)
	var recs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 2)
	require.Equal(t, "C", recs[0]["CODE"])

	req, _ := srv.LastRequest()
	require.Equal(t, "limit=2&sort=CODE&direction=desc", req.RawQuery)
	require.Equal(t, "Bearer k", req.Header.Get("Authorization"))

	t.Run("table", func(t *testing.T) {
		out, err := run(t, connect(srv, "list", "items")...)
		require.NoError(t, err)
		require.Contains(t, out, "INTERNAL_REFERENCE")
		require.Contains(t, out, "Banana")
		require.Less(t, strings.Index(out, "INTERNAL_REFERENCE"), strings.Index(out, "NAME"))
	})

	t.Run("all pages", func(t *testing.T) {
		before := len(srv.Requests())
		out, err := run(t, connect(srv, "list", "items", "--limit", "2", "--all", "-o", "json")...)
		require.NoError(t, err)
		var recs []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &recs))
		require.Len(t, recs, 3)
		require.Len(t, srv.Requests(), before+2)
	})

	t.Run("empty", func(t *testing.T) {
		out, err := run(t, connect(srv, "list", "items", "--q", "CODE eq 'Z'")...)
		require.NoError(t, err)
		require.Contains(t, out, "no records")
	})
}

func TestGet(t *testing.T) {
	srv := itemsServer(t)

	out, err := run(t, connect(srv, "get", "items", "2", "-o", "json")...)
	require.NoError(t, err)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	require.Equal(t, "B", rec["CODE"])

	_, err = run(t, connect(srv, "get", "items", "99")...)
	require.ErrorContains(t, err, "not found")
}

func TestSearch(t *testing.T) {
	srv := itemsServer(t)

	out, err := run(t, connect(srv, "search", "items", "--where", "code=B", "-o", "json")...)
	require.NoError(t, err)
	var recs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	require.Equal(t, "Banana", recs[0]["NAME"])

	req, _ := srv.LastRequest()
	require.Equal(t, "CODE eq 'B'", req.Options.Q)

	t.Run("zero-padded code stays a string", func(t *testing.T) {
		srv := logotest.New(t)
		srv.Collection("items",
			map[string]any{"CODE": "1", "NAME": "One"},
			map[string]any{"CODE": "001", "NAME": "Padded"},
		)
		out, err := run(t, connect(srv, "search", "items", "--where", "code=001", "-o", "json")...)
		require.NoError(t, err)
		var recs []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &recs))
		require.Len(t, recs, 1)
		require.Equal(t, "Padded", recs[0]["NAME"])

		req, _ := srv.LastRequest()
		require.Equal(t, "CODE eq '001'", req.Options.Q)
	})

	t.Run("like", func(t *testing.T) {
		out, err := run(t, connect(srv, "search", "items", "--like", "name=Ch", "-o", "json")...)
		require.NoError(t, err)
		var recs []map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &recs))
		require.Len(t, recs, 1)
		require.Equal(t, "C", recs[0]["CODE"])
	})

	_, err = run(t, connect(srv, "search", "items")...)
	require.ErrorContains(t, err, "--where")
}

func TestCall(t *testing.T) {
	srv := itemsServer(t)
	srv.Handle("GET", "/items/:id/ExportToXML", func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		w.Write([]byte("<ITEM REF=\"" + p.ByName("id") + "\"/>"))
	})
	srv.Handle("GET", "/items/:id/GetUnitPrice/:unit", func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		json.NewEncoder(w).Encode(map[string]any{"unit": p.ByName("unit"), "price": 12.5})
	})
	srv.Handle("POST", "/materialSlips/:id/AddSeriLots", func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		io.Copy(w, r.Body)
	})

	t.Run("raw xml", func(t *testing.T) {
		out, err := run(t, connect(srv, "call", "items", "ExportToXML", "2")...)
		require.NoError(t, err)
		require.Equal(t, "<ITEM REF=\"2\"/>\n", out)
	})

	t.Run("named params", func(t *testing.T) {
		out, err := run(t, connect(srv, "call", "items", "GetUnitPrice", "--param", "id=2", "--param", "_unitCode=ADET")...)
		require.NoError(t, err)
		require.Contains(t, out, `"unit": "ADET"`)
	})

	t.Run("body from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lots.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"SL_CODE":"LOT1"}]`), 0o600))
		out, err := run(t, connect(srv, "call", "materialSlips", "AddSeriLots", "7", "--data", "@"+path)...)
		require.NoError(t, err)
		require.Contains(t, out, `"SL_CODE": "LOT1"`)
	})

	t.Run("body required", func(t *testing.T) {
		_, err := run(t, connect(srv, "call", "materialSlips", "AddSeriLots", "7")...)
		require.Error(t, err)
	})

	t.Run("unknown operation", func(t *testing.T) {
		_, err := run(t, connect(srv, "call", "items", "ExportToXM", "2")...)
		require.ErrorContains(t, err, "ExportToXML")
	})
}

func TestMissingBaseURL(t *testing.T) {
	t.Setenv("LOGO_BASE_URL", "")
	_, err := run(t, "list", "items", "--api-key", "k")
	require.ErrorContains(t, err, "no base URL")
}

func TestConfigFile(t *testing.T) {
	srv := itemsServer(t)
	path := filepath.Join(t.TempDir(), "logoctl.yaml")
	cfg := "base-url: " + srv.URL + "\napi-key: from-file\noutput: json\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	out, err := run(t, "list", "items", "--config", path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(strings.TrimSpace(out), "["), "output %q is not JSON", out)

	req, _ := srv.LastRequest()
	require.Equal(t, "Bearer from-file", req.Header.Get("Authorization"))
}
