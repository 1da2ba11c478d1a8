package integration

import (
	"context"
	"errors"
	"testing"

	logoobjects "github.com/DrewBradfordXYZ/logo-objects-go"
	"github.com/DrewBradfordXYZ/logo-objects-go/core"
	"github.com/DrewBradfordXYZ/logo-objects-go/objects"
	"github.com/DrewBradfordXYZ/logo-objects-go/query"
)

func TestPasswordAuth(t *testing.T) {
	if testConfig.Username == "" {
		t.Skip("Skipping: LOGO_USERNAME not set")
	}
	cfg := testConfig
	cfg.APIKey = ""

	c, err := logoobjects.NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig() error = %v", err)
	}
	if _, err := objects.Items(c).GetAll(context.Background(), &query.ListOptions{Limit: query.Int(1)}); err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}

	t.Run("wrong password", func(t *testing.T) {
		cfg.Password = "definitely-wrong"
		c, err := logoobjects.NewFromConfig(cfg, logoobjects.WithMaxRetries(0))
		if err != nil {
			t.Fatalf("NewFromConfig() error = %v", err)
		}
		_, err = objects.Items(c).GetAll(context.Background(), nil)
		var aerr *core.AuthenticationError
		if !errors.As(err, &aerr) {
			t.Errorf("GetAll() error = %v, want *core.AuthenticationError", err)
		}
	})
}
