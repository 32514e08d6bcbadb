//go:build rp2040

package main

import "airnode-go/x/fmtx"

func main() {
	a := assemble()
	fmtx.Fprintf(a.con, "airnode starting\n")
	a.loop.Start()
	a.loop.Run(nil)
}
