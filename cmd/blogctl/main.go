// Command blogctl inspects a blog database without going through HTTP.
//
//	blogctl [-db path] resolve <slug>
//	blogctl [-db path] history <post-id>
//	blogctl [-db path] audit
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/slugblog/internal/config"
	"github.com/slugblog/internal/db"
	"github.com/slugblog/internal/logging"
	"github.com/slugblog/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	dbPath := flag.String("db", cfg.DatabasePath, "path to the sqlite database")
	level := flag.String("log-level", "warn", "log level")
	flag.Usage = usage
	flag.Parse()

	log, err := logging.New(*level, os.Stderr)
	if err != nil {
		logrus.Fatalf("invalid log level %q: %v", *level, err)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	if err := db.Init(*dbPath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	blog := service.NewBlog(db.DB, service.Options{Logger: log})

	exit, err := run(context.Background(), blog, args)
	os.Exit(report(log, exit, err))
}

// report logs err and picks the process exit status: 2 for usage mistakes,
// 1 for failures and problems found, 0 otherwise.
func report(log *logrus.Logger, exit int, err error) int {
	if err == nil {
		return exit
	}
	if exit == 2 {
		fmt.Fprintln(flag.CommandLine.Output(), err)
		return 2
	}
	log.Error(err)
	return 1
}

// run executes one subcommand. The exit status is 1 when the result
// reports a problem, so the command can guard scripts.
func run(ctx context.Context, blog *service.Blog, args []string) (int, error) {
	switch args[0] {
	case "resolve":
		if len(args) != 2 {
			return 2, fmt.Errorf("usage: blogctl resolve <slug>")
		}
		res, err := blog.Resolver.Resolve(ctx, args[1])
		if err != nil {
			return 0, err
		}
		if err := printJSON(res); err != nil {
			return 0, err
		}
		if res.Kind.Integrity() {
			return 1, nil
		}
		return 0, nil

	case "history":
		if len(args) != 2 {
			return 2, fmt.Errorf("usage: blogctl history <post-id>")
		}
		id, err := db.ParsePostID(args[1])
		if err != nil {
			return 2, fmt.Errorf("invalid post id %q: %w", args[1], err)
		}
		entries, err := blog.Archive.History(ctx, id)
		if err != nil {
			return 0, err
		}
		return 0, printJSON(entries)

	case "audit":
		problems, err := blog.Resolver.Audit(ctx)
		if err != nil {
			return 0, err
		}
		if problems == nil {
			problems = []service.Resolution{}
		}
		if err := printJSON(problems); err != nil {
			return 0, err
		}
		if len(problems) > 0 {
			return 1, nil
		}
		return 0, nil
	}

	return 2, fmt.Errorf("unknown command %q", args[0])
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: blogctl [flags] resolve <slug> | history <post-id> | audit\n")
	flag.PrintDefaults()
}
