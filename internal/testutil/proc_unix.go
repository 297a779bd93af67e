//go:build unix

package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// GroupAlive reports whether process group pgid still has a live member.
// Zombies do not count: in containers whose init never reaps orphans they
// linger after a group kill. Without /proc it falls back to kill(-pgid, 0).
func GroupAlive(pgid int) bool {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return syscall.Kill(-pgid, 0) == nil
	}
	for _, e := range entries {
		if _, err := strconv.Atoi(e.Name()); err != nil {
			continue
		}
		raw, err := os.ReadFile(filepath.Join("/proc", e.Name(), "stat"))
		if err != nil {
			continue
		}
		state, group, ok := parseStat(string(raw))
		if ok && group == pgid && state != "Z" && state != "X" {
			return true
		}
	}
	return false
}

// parseStat extracts the state and pgrp fields of /proc/<pid>/stat.
// comm may contain spaces and parentheses, so fields start after the last ')'.
func parseStat(stat string) (state string, pgrp int, ok bool) {
	i := strings.LastIndexByte(stat, ')')
	if i < 0 {
		return "", 0, false
	}
	fields := strings.Fields(stat[i+1:])
	if len(fields) < 3 {
		return "", 0, false
	}
	pgrp, err := strconv.Atoi(fields[2])
	if err != nil {
		return "", 0, false
	}
	return fields[0], pgrp, true
}
