package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/protobuf/encoding/prototext"

	"github.com/theoremus-urban-solutions/transit-live/config"
	"github.com/theoremus-urban-solutions/transit-live/gtfsrt"
)

const separator = "------------------------------------------------------------"

func main() {
	url := flag.String("url", config.DefaultTripUpdatesURL, "GTFS-Realtime feed URL or local .pb file")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	b, err := gtfsrt.NewClient(*timeout).Fetch(ctx, *url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fetch failed: %v\n", err)
		os.Exit(1)
	}
	feed, err := gtfsrt.Decode(b)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode failed: %v\n", err)
		os.Exit(1)
	}

	opts := prototext.MarshalOptions{Multiline: true, Indent: "  "}
	for _, e := range feed.GetEntity() {
		fmt.Println(strings.TrimRight(opts.Format(e), "\n"))
		fmt.Println(separator)
	}
}
