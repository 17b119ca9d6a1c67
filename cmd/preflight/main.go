// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	addr := strings.TrimSpace(os.Getenv("ADDR"))
	driver := strings.TrimSpace(os.Getenv("DATABASE_DRIVER"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))

	if admin == "" {
		fail("ADMIN_API_KEYS is empty (write routes will 403).")
	}
	if pub == "" {
		fail("PUBLIC_API_KEYS is empty (read routes will 401).")
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if addr == "" {
		warn("ADDR is empty; default :8080 will be used.")
	} else {
		ok("ADDR=" + addr)
	}

	switch driver {
	case "", "sqlite":
		if db == "" {
			warn("DATABASE_URL empty — sqlite will use ./statuspulse.db")
		} else {
			ok("sqlite at " + db)
		}
	case "postgres":
		if db == "" {
			fail("DATABASE_DRIVER=postgres but DATABASE_URL is empty.")
		}
		ok("postgres DSN present")
	case "memory":
		warn("memory store selected — nothing survives a restart.")
	default:
		fail("unknown DATABASE_DRIVER " + driver)
	}

	ok("preflight passed")
}
