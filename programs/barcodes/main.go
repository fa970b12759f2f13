package main

import "github.com/smarini/Drop-seq/programs/barcodes/cmd"

func main() {
	cmd.Execute()
}
