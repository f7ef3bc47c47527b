package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/storefront/internal/apierr"
	"github.com/mmynk/storefront/internal/config"
	"github.com/mmynk/storefront/internal/mockbackend"
	"github.com/mmynk/storefront/internal/storage/sqlite"
)

func setupApp(t *testing.T) (*app, *bytes.Buffer, string) {
	t.Helper()

	backend, err := mockbackend.New(context.Background(), mockbackend.Config{Seed: true, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	ts := httptest.NewServer(backend.Handler())
	t.Cleanup(ts.Close)

	dbPath := filepath.Join(t.TempDir(), "session.db")
	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	var out bytes.Buffer
	a := newApp(config.Config{BaseURL: ts.URL}, store, &out, slog.Default())
	return a, &out, ts.URL
}

func TestApp_LoggedOutCommands(t *testing.T) {
	a, _, _ := setupApp(t)

	for _, cmd := range []string{"whoami", "cart", "orders", "addresses", "checkout"} {
		err := a.dispatch(context.Background(), cmd, nil)
		require.Error(t, err, cmd)
		assert.True(t, apierr.IsSilent(err), cmd)

		var buf bytes.Buffer
		report(&buf, err)
		assert.Equal(t, "please log in\n", buf.String(), cmd)
	}
}

func TestApp_ShoppingFlow(t *testing.T) {
	a, out, _ := setupApp(t)
	ctx := context.Background()

	require.NoError(t, a.dispatch(ctx, "login", []string{"-u", mockbackend.DemoUsername, "-p", mockbackend.DemoPassword}))
	assert.Contains(t, out.String(), "logged in as Demo")

	require.NoError(t, a.dispatch(ctx, "products", []string{"-featured"}))
	assert.Contains(t, out.String(), "Longjing Green Tea")

	require.NoError(t, a.dispatch(ctx, "addresses", []string{"-add", "-name", "Ali", "-phone", "138"}))

	list, err := a.products.List(ctx, productFilterSearch("longjing"))
	require.NoError(t, err)
	require.Len(t, list, 1)

	out.Reset()
	require.NoError(t, a.dispatch(ctx, "add", []string{"-product", itoa(list[0].ID), "-qty", "2"}))
	assert.Contains(t, out.String(), "qty 2")

	out.Reset()
	require.NoError(t, a.dispatch(ctx, "checkout", nil))
	assert.Contains(t, out.String(), "subtotal 20.00")
	assert.Contains(t, out.String(), "1 of 1 orders created")

	out.Reset()
	require.NoError(t, a.dispatch(ctx, "cart", nil))
	assert.Contains(t, out.String(), "cart is empty")

	out.Reset()
	require.NoError(t, a.dispatch(ctx, "orders", nil))
	assert.Contains(t, out.String(), "pending")

	require.NoError(t, a.dispatch(ctx, "logout", nil))
	assert.False(t, a.session.LoggedIn())
}

func TestApp_CheckoutWithoutAddress(t *testing.T) {
	a, _, _ := setupApp(t)
	ctx := context.Background()

	require.NoError(t, a.dispatch(ctx, "login", []string{"-u", mockbackend.DemoUsername, "-p", mockbackend.DemoPassword}))
	require.NoError(t, a.dispatch(ctx, "add", []string{"-product", "3"}))

	err := a.dispatch(ctx, "checkout", nil)
	assert.ErrorIs(t, err, apierr.ErrAddressRequired)
}

func TestApp_SessionSurvivesRestart(t *testing.T) {
	backend, err := mockbackend.New(context.Background(), mockbackend.Config{Seed: true, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	ts := httptest.NewServer(backend.Handler())
	defer ts.Close()

	dbPath := filepath.Join(t.TempDir(), "session.db")
	cfg := config.Config{BaseURL: ts.URL}
	ctx := context.Background()

	store, err := sqlite.New(dbPath)
	require.NoError(t, err)
	first := newApp(cfg, store, &bytes.Buffer{}, slog.Default())
	require.NoError(t, first.dispatch(ctx, "login", []string{"-u", mockbackend.DemoUsername, "-p", mockbackend.DemoPassword}))
	require.NoError(t, first.session.Save(ctx))
	require.NoError(t, store.Close())

	store, err = sqlite.New(dbPath)
	require.NoError(t, err)
	defer store.Close()
	var out bytes.Buffer
	second := newApp(cfg, store, &out, slog.Default())
	require.NoError(t, second.session.Restore(ctx))
	require.NoError(t, second.dispatch(ctx, "whoami", nil))
	assert.Contains(t, out.String(), "Demo")
}

func TestApp_UnknownCommand(t *testing.T) {
	a, _, _ := setupApp(t)
	err := a.dispatch(context.Background(), "frobnicate", nil)
	assert.True(t, errors.Is(err, errUsage))
}

func TestSelectItems(t *testing.T) {
	items := cartItems(1, 2, 3)

	got, err := selectItems(items, "")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = selectItems(items, "3, 1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	_, err = selectItems(items, "x")
	assert.ErrorIs(t, err, errUsage)
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	report(&buf, apierr.RequestFailed(400, nil, "insufficient stock"))
	report(&buf, apierr.AuthExpired())
	report(&buf, errors.New("plain"))
	assert.Equal(t, []string{"insufficient stock", "please log in", "plain"}, strings.Split(strings.TrimSpace(buf.String()), "\n"))
}
