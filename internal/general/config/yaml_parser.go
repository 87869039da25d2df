package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseYAML parses the specific two-level mapping used by config.yaml
func parseYAML(r io.Reader, cfg *Config) error {
	type section int
	const (
		none section = iota
		sv
		ht
		db
		rd
		rm
		mp
		st
	)

	sections := map[string]section{
		"service:":  sv,
		"http:":     ht,
		"database:": db,
		"redis:":    rd,
		"rabbitmq:": rm,
		"maps:":     mp,
		"stripe:":   st,
	}

	scanner := bufio.NewScanner(r)
	var cur section

	lineNo := 0
	seenTop := map[section]bool{}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()

		// strip comments
		if i := strings.IndexByte(raw, '#'); i >= 0 {
			raw = raw[:i]
		}

		line := strings.TrimRight(raw, " \t\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		// top-level section? (no leading spaces)
		if line[0] != ' ' && line[0] != '\t' {
			sec, ok := sections[strings.TrimSpace(line)]
			if !ok {
				return fmt.Errorf("line %d: unknown top-level key %q", lineNo, strings.TrimSuffix(strings.TrimSpace(line), ":"))
			}
			if seenTop[sec] {
				return fmt.Errorf("line %d: duplicate %q section", lineNo, strings.TrimSuffix(strings.TrimSpace(line), ":"))
			}
			seenTop[sec] = true
			cur = sec
			continue
		}

		// expect indented "key: value"
		if cur == none {
			return fmt.Errorf("line %d: key without a section", lineNo)
		}
		trim := strings.TrimSpace(line)
		colon := strings.IndexByte(trim, ':')
		if colon <= 0 {
			return fmt.Errorf("line %d: expected 'key: value'", lineNo)
		}
		key := strings.TrimSpace(trim[:colon])
		val := strings.TrimSpace(trim[colon+1:])

		var err error
		switch cur {
		case sv:
			switch key {
			case "name":
				cfg.Service.Name = resolveScalar(val)
			default:
				err = fmt.Errorf("unknown key in service: %q", key)
			}
		case ht:
			switch key {
			case "port":
				cfg.HTTP.Port, err = parsePort("http.port", val)
			case "allowed_origins":
				cfg.HTTP.AllowedOrigins, err = parseStringList(val)
			default:
				err = fmt.Errorf("unknown key in http: %q", key)
			}
		case db:
			switch key {
			case "host":
				cfg.Database.Host = resolveScalar(val)
			case "port":
				cfg.Database.Port, err = parsePort("database.port", val)
			case "user":
				cfg.Database.User = resolveScalar(val)
			case "password":
				cfg.Database.Password = resolveScalar(val)
			case "database":
				cfg.Database.Name = resolveScalar(val)
			default:
				err = fmt.Errorf("unknown key in database: %q", key)
			}
		case rd:
			switch key {
			case "host":
				cfg.Redis.Host = resolveScalar(val)
			case "port":
				cfg.Redis.Port, err = parsePort("redis.port", val)
			default:
				err = fmt.Errorf("unknown key in redis: %q", key)
			}
		case rm:
			switch key {
			case "host":
				cfg.RabbitMQ.Host = resolveScalar(val)
			case "port":
				cfg.RabbitMQ.Port, err = parsePort("rabbitmq.port", val)
			case "user":
				cfg.RabbitMQ.User = resolveScalar(val)
			case "password":
				cfg.RabbitMQ.Password = resolveScalar(val)
			default:
				err = fmt.Errorf("unknown key in rabbitmq: %q", key)
			}
		case mp:
			switch key {
			case "api_key":
				cfg.Maps.APIKey = resolveScalar(val)
			default:
				err = fmt.Errorf("unknown key in maps: %q", key)
			}
		case st:
			switch key {
			case "api_key":
				cfg.Stripe.APIKey = resolveScalar(val)
			case "success_url":
				cfg.Stripe.SuccessURL = resolveScalar(val)
			case "cancel_url":
				cfg.Stripe.CancelURL = resolveScalar(val)
			default:
				err = fmt.Errorf("unknown key in stripe: %q", key)
			}
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}

	return scanner.Err()
}

func parsePort(field, val string) (int, error) {
	p, err := strconv.Atoi(resolveScalar(val))
	if err != nil {
		return 0, fmt.Errorf("%s must be int: %v", field, err)
	}
	return p, nil
}

// parseStringList accepts a JSON-style inline list or a single bare value:
//
//	["http://a", "http://b"]  -> {http://a, http://b}
//	http://a                  -> {http://a}
func parseStringList(val string) ([]string, error) {
	val = strings.TrimSpace(val)
	if strings.HasPrefix(val, "[") {
		var out []string
		if err := json.Unmarshal([]byte(val), &out); err != nil {
			return nil, fmt.Errorf("expected a JSON string list: %v", err)
		}
		return out, nil
	}
	if s := resolveScalar(val); s != "" {
		return []string{s}, nil
	}
	return nil, nil
}

// resolveScalar trims whitespace and removes surrounding quotes from YAML-like scalars.
func resolveScalar(s string) string {
	s = strings.TrimSpace(s)

	n := len(s)
	if n >= 2 {
		if (s[0] == '"' && s[n-1] == '"') || (s[0] == '\'' && s[n-1] == '\'') {
			if unq, err := strconv.Unquote(s); err == nil {
				return unq
			}
			// fallback if strconv.Unquote fails (e.g., single quotes)
			return s[1 : n-1]
		}
	}

	return s
}
