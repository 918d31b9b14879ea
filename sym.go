package main

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

type symbols []symbol

func (s symbols) forAddr(addr uint16) (ss []symbol) {
	i := sort.Search(len(s), func(i int) bool { return s[i].addr >= addr })
	for ; i < len(s); i++ {
		if s[i].addr != addr {
			break
		}
		ss = append(ss, s[i])
	}
	return ss
}

func (s symbols) withLabelPrefix(prefix string) (ss []symbol) {
	for _, sym := range s {
		if strings.HasPrefix(sym.label, prefix) {
			ss = append(ss, sym)
		}
	}
	return ss
}

// resolve returns the symbol with the given label, or else parses arg
// as a hexadecimal address.
func (s symbols) resolve(arg string) (symbol, bool) {
	for _, sym := range s {
		if sym.label == arg {
			return sym, true
		}
	}
	h := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(arg), "0x"), "$")
	addr, err := strconv.ParseUint(h, 16, 16)
	if err != nil || addr >= 0x1000 {
		return symbol{}, false
	}
	if ss := s.forAddr(uint16(addr)); len(ss) > 0 {
		return ss[0], true
	}
	return symbol{addr: uint16(addr), label: fmt.Sprintf("%.3x", addr)}, true
}

type symbol struct {
	addr  uint16
	label string
}

func (s symbol) String() string { return fmt.Sprintf("%s (%.4x)", s.label, s.addr) }

// parseSymbols reads a symbol file: one "address label" pair per line,
// the address in hexadecimal. Blank lines and lines starting with '#'
// are skipped.
func parseSymbols(symFile string) (symbols, error) {
	b, err := os.ReadFile(symFile)
	if err != nil {
		return nil, err
	}
	var (
		ss   symbols
		line int
		sc   = bufio.NewScanner(bytes.NewReader(b))
	)
	for sc.Scan() {
		line++
		t := strings.TrimSpace(sc.Text())
		if t == "" || t[0] == '#' {
			continue
		}
		f := strings.Fields(t)
		if len(f) != 2 {
			return nil, fmt.Errorf("%s:%d: want address and label, got %q", symFile, line, t)
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(f[0]), "0x"), 16, 16)
		if err != nil || addr >= 0x1000 {
			return nil, fmt.Errorf("%s:%d: invalid address %q", symFile, line, f[0])
		}
		ss = append(ss, symbol{addr: uint16(addr), label: f[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(ss, func(i, j int) bool {
		return ss[i].addr < ss[j].addr
	})
	return ss, nil
}
