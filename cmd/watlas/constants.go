package main

// DefaultSearchLimit is the default number of search results.
const DefaultSearchLimit = 10

// Valid export formats.
var validFormats = []string{"json", "csv", "markdown"}
