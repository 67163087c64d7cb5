package commands

import (
	"fmt"
	"io"

	"github.com/lightcycles/engine/controller"
	"github.com/lightcycles/engine/controller/filestore"
	"github.com/lightcycles/engine/controller/redisstore"
	"github.com/lightcycles/engine/controller/sqlstore"
	log "github.com/sirupsen/logrus"
)

var (
	storeKind = "file"
	storeDir  = ""
	storeURL  = ""
)

// openStore opens the store selected on the command line. The returned
// function closes it.
func openStore() (controller.Store, func(), error) {
	var (
		store controller.Store
		err   error
	)
	switch storeKind {
	case "memory", "inmem":
		store = controller.InMemStore()
	case "file":
		store = filestore.NewFileStore(storeDir)
	case "redis":
		store, err = redisstore.NewRedisStore(storeURL)
	case "postgres", "sql":
		store, err = sqlstore.NewSQLStore(storeURL)
	default:
		return nil, nil, fmt.Errorf("invalid store %q", storeKind)
	}
	if err != nil {
		return nil, nil, err
	}

	closeStore := func() {
		if c, ok := store.(io.Closer); ok {
			if err := c.Close(); err != nil {
				log.WithError(err).Error("unable to close store")
			}
		}
	}
	return controller.InstrumentStore(store), closeStore, nil
}
