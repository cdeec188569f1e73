package main

import "github.com/quehaypahacer/agenda-ingest/internal/cli"

func main() {
	cli.Execute()
}
