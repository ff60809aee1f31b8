package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandWiresSubcommands(t *testing.T) {
	root := newRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "crawl", "enrich"}, names)

	crawl, _, err := root.Find([]string{"crawl"})
	require.NoError(t, err)
	assert.NotNil(t, crawl.Flags().Lookup("links"))
}
