// Command poolclient sends a request to a running poolserver and
// reports the status.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultRoot = "http://localhost:8000/"

var errUsage = errors.New("usage: poolclient [-server URL] water|air <value>")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "poolclient: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("poolclient", flag.ContinueOnError)
	root := fs.String("server", defaultRoot, "server root URL")
	timeout := fs.Duration("timeout", 5*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) != 2 {
		return errUsage
	}
	switch rest[0] {
	case "water", "air":
	default:
		return fmt.Errorf("unknown command %q: %w", rest[0], errUsage)
	}

	status, err := get(ctx, &http.Client{Timeout: *timeout}, *root)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		fmt.Fprintln(out, "Status 200, success")
	} else {
		fmt.Fprintf(out, "Status %d, error\n", status)
	}
	return nil
}

func get(ctx context.Context, c *http.Client, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
