package main

import (
	"log"

	"github.com/feedkit/feed-responder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
