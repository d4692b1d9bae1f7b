package commands

import (
	"fmt"
	"io"

	"github.com/battlesnakeio/gridsnake/controller"
	"github.com/battlesnakeio/gridsnake/controller/filestore"
	"github.com/battlesnakeio/gridsnake/controller/redisstore"
	"github.com/battlesnakeio/gridsnake/controller/sqlstore"
	"github.com/spf13/pflag"
)

var (
	storeKind   = "file"
	storeDir    = ""
	redisURL    = "redis://localhost:6379"
	postgresURL = "postgres://postgres@127.0.0.1:5432/postgres?sslmode=disable"
)

func addStoreFlags(fs *pflag.FlagSet) {
	fs.StringVar(&storeKind, "store", storeKind, "where games are recorded: inmem, file, redis or sql")
	fs.StringVar(&storeDir, "dir", storeDir, "directory of the file store, defaults to ~/.gridsnake/games")
	fs.StringVar(&redisURL, "redis-url", redisURL, "url of the redis store")
	fs.StringVar(&postgresURL, "postgres-url", postgresURL, "url of the sql store")
}

// openStore builds the selected store, instrumented. The returned close
// function is never nil.
func openStore(kind string) (controller.Store, func(), error) {
	var (
		s   controller.Store
		err error
	)
	switch kind {
	case "inmem":
		s = controller.InMemStore()
	case "file":
		s = filestore.NewFileStore(storeDir)
	case "redis":
		s, err = redisstore.NewStore(redisURL)
	case "sql":
		s, err = sqlstore.NewSQLStore(postgresURL)
	default:
		return nil, func() {}, fmt.Errorf("unknown store %q", kind)
	}
	if err != nil {
		return nil, func() {}, err
	}

	closer := func() {}
	if c, ok := s.(io.Closer); ok {
		closer = func() { c.Close() }
	}
	return controller.InstrumentStore(s), closer, nil
}
