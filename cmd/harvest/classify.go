package main

import (
	"fmt"

	"github.com/fwojciec/harvest"
)

// Run executes the classify command. Each line holds the URL, its content
// type and, for YouTube, the video id or listing kind.
func (c *ClassifyCmd) Run(deps *Dependencies) error {
	for _, u := range c.URLs {
		typ := harvest.Classify(u)
		detail := ""
		if typ == harvest.ContentYouTube {
			if id, ok := harvest.ExtractYouTubeVideoID(u); ok {
				detail = id
			} else if kind, ok := harvest.YouTubeListing(u); ok {
				detail = string(kind)
			}
		}
		if detail != "" {
			fmt.Fprintf(deps.Stdout, "%s\t%s\t%s\n", u, typ, detail)
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s\t%s\n", u, typ)
	}
	return nil
}
