package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/memtracer"
)

func replayTrace(args []string, tracers *memtracer.List) {
	input, name := openTrace(args)
	defer input.Close()

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		accessType, addr, bytes, err := parseTraceLine(line)
		if err != nil {
			fatalf("%s:%d: %v", name, lineNo, err)
		}

		tracers.Trace(addr, bytes, accessType)
	}

	if err := scanner.Err(); err != nil {
		fatalf("reading %s: %v", name, err)
	}
}

func openTrace(args []string) (io.ReadCloser, string) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), "<stdin>"
	}

	f, err := os.Open(args[0])
	if err != nil {
		fatalf("%v", err)
	}

	return f, args[0]
}

// parseTraceLine parses one "<F|L|S> <address> <bytes>" access.
func parseTraceLine(line string) (memtracer.AccessType, uint64, uint64, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf(
			"want \"<F|L|S> <address> <bytes>\", got %q", line)
	}

	var accessType memtracer.AccessType
	switch fields[0] {
	case "F", "f":
		accessType = memtracer.Fetch
	case "L", "l":
		accessType = memtracer.Load
	case "S", "s":
		accessType = memtracer.Store
	default:
		return 0, 0, 0, fmt.Errorf("unknown access type %q", fields[0])
	}

	addr, err := strconv.ParseUint(fields[1], 0, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bad address %q", fields[1])
	}

	bytes, err := strconv.ParseUint(fields[2], 0, 64)
	if err != nil || bytes == 0 {
		return 0, 0, 0, fmt.Errorf("bad byte count %q", fields[2])
	}

	return accessType, addr, bytes, nil
}
