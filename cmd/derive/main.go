// Command derive prints the address and proof a program derives for a list
// of seeds. Seeds are UTF-8 strings unless prefixed with "addr:", in which
// case they are decoded as base58 addresses.
//
//	derive -program platform book addr:9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin
//
// Exit codes: 0 = success, 1 = derivation failed, 2 = usage error.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/heartmarshall/folio/internal/address"
)

func main() {
	program := flag.String("program", "platform", "program name (marketplace, platform, minter, token, metadata, system)")
	flag.Parse()

	seeds := make([][]byte, 0, flag.NArg())
	for _, arg := range flag.Args() {
		seed, err := parseSeed(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed %q: %v\n", arg, err)
			os.Exit(2)
		}
		seeds = append(seeds, seed)
	}

	programID := address.ProgramID(*program)
	addr, proof, err := address.Derive(programID, seeds...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "derive: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("program  %s (%s)\n", *program, programID)
	fmt.Printf("address  %s\n", addr)
	fmt.Printf("proof    %d\n", proof)
}

func parseSeed(arg string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(arg, "addr:"); ok {
		a, err := address.Parse(rest)
		if err != nil {
			return nil, err
		}
		return a.Bytes(), nil
	}
	return address.Seed(arg), nil
}
