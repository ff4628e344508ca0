package assets

import _ "embed"

// DemoStatement is a small sample export served when no statement has been
// uploaded yet.
//
//go:embed demo/demo.txt
var DemoStatement string
