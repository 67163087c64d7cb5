package commands

import (
	"context"
	"io/ioutil"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/lightcycles/engine/api"
	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/rules"
	"github.com/stretchr/testify/require"
)

func useFileStore(t *testing.T) func() {
	dir, err := ioutil.TempDir("", "cycles-commands")
	require.NoError(t, err)
	storeKind, storeDir = "file", dir
	return func() {
		storeKind, storeDir = "file", ""
		os.RemoveAll(dir)
	}
}

func TestCreateAndStatus_Store(t *testing.T) {
	defer useFileStore(t)()
	ctx := context.Background()

	id, err := createMatch(ctx)
	require.NoError(t, err)

	// A reopened file store only knows what the file says, and an unfinished
	// match reads back as stopped.
	sr, err := getStatus(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, sr.Match.ID)
	require.Equal(t, rules.MatchStatusStopped, sr.Match.Status)
	require.Equal(t, int64(0), sr.LastFrame.Turn)

	_, err = getStatus(ctx, "missing")
	require.Equal(t, controller.ErrNotFound, err)
}

func TestCreateAndStatus_API(t *testing.T) {
	ctrl := controller.New(controller.InMemStore())
	ts := httptest.NewServer(api.New(":0", ctrl).Handler())
	defer ts.Close()

	apiAddr = ts.URL + "/"
	defer func() { apiAddr = "" }()
	ctx := context.Background()

	id, err := createMatch(ctx)
	require.NoError(t, err)

	sr, err := getStatus(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, sr.Match.ID)
	require.Equal(t, rules.MatchStatusRunning, sr.Match.Status)
	require.Len(t, sr.LastFrame.Cycles, 2)

	_, err = getStatus(ctx, "missing")
	require.Error(t, err)
	require.Contains(t, err.Error(), "404")
}

func TestOpenStore(t *testing.T) {
	defer func() { storeKind = "file" }()

	storeKind = "memory"
	store, closeStore, err := openStore()
	require.NoError(t, err)
	require.NotNil(t, store)
	closeStore()

	storeKind = "carrier-pigeon"
	_, _, err = openStore()
	require.Error(t, err)
}
