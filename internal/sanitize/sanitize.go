// Package sanitize redacts sensitive data from session messages
// before they leave the machine. The pipeline is a fixed, ordered
// list of regex passes; each substitution consumes its span so a
// region is attributed to exactly one category.
package sanitize

import "regexp"

// Message is the role/content pair the sanitizer operates on.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Counts reports how many substitutions each category made.
type Counts struct {
	Credentials  int `json:"credentials"`
	Paths        int `json:"paths"`
	Emails       int `json:"emails"`
	URLs         int `json:"urls"`
	IPs          int `json:"ips"`
	EnvVars      int `json:"envVars"`
	DatabaseURLs int `json:"databaseUrls"`
}

// Add accumulates another counter block into c.
func (c *Counts) Add(other Counts) {
	c.Credentials += other.Credentials
	c.Paths += other.Paths
	c.Emails += other.Emails
	c.URLs += other.URLs
	c.IPs += other.IPs
	c.EnvVars += other.EnvVars
	c.DatabaseURLs += other.DatabaseURLs
}

// Total returns the sum across all categories.
func (c Counts) Total() int {
	return c.Credentials + c.Paths + c.Emails + c.URLs +
		c.IPs + c.EnvVars + c.DatabaseURLs
}

var (
	// Database URLs run before the generic URL and credential
	// passes so a connection string with embedded credentials is
	// counted once, as a database URL.
	dbURLRe = regexp.MustCompile(
		`(?i)\b(?:postgres|postgresql|mysql|mariadb|mongodb(?:\+srv)?|redis|rediss|mssql|sqlserver|amqp|amqps)://[^\s"'<>]+`,
	)

	// NAME=value assignments. The value is replaced, the name kept,
	// so an exported API key is counted as an env var rather than a
	// bare credential.
	envVarRe = regexp.MustCompile(
		`\b([A-Z][A-Z0-9_]{2,})=("[^"\n]*"|'[^'\n]*'|[^\s"']+)`,
	)

	// Provider-format API keys and bearer-style introductions.
	credentialRes = []*regexp.Regexp{
		regexp.MustCompile(`\bsk-ant-[A-Za-z0-9_-]{16,}\b`),
		regexp.MustCompile(`\bsk-[A-Za-z0-9_-]{16,}\b`),
		regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{20,}\b`),
		regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{20,}\b`),
		regexp.MustCompile(`\bxox[baprs]-[A-Za-z0-9-]{10,}\b`),
		regexp.MustCompile(`\bglpat-[A-Za-z0-9_-]{20,}\b`),
		regexp.MustCompile(`\bAKIA[A-Z0-9]{16}\b`),
		regexp.MustCompile(`\bAIza[A-Za-z0-9_-]{35}\b`),
		regexp.MustCompile(`(?i)\b(?:bearer|token|api[_-]?key|secret|passwd|password)[\s:=]+[A-Za-z0-9+/_.=-]{8,}`),
	}

	// Absolute filesystem paths under either separator.
	pathRe = regexp.MustCompile(
		`(?:[A-Za-z]:\\[^\s:*?"<>|]+|/(?:home|Users|usr|var|etc|opt|tmp|root|mnt|srv|private)/[^\s:'"]+)`,
	)

	urlRe = regexp.MustCompile(`\bhttps?://[^\s"'<>)\]]+`)

	emailRe = regexp.MustCompile(
		`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`,
	)

	ipv4Re = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	ipv6Re = regexp.MustCompile(
		`\b(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}\b|\b(?:[0-9a-fA-F]{1,4}:)+:(?:[0-9a-fA-F]{1,4}:)*[0-9a-fA-F]{1,4}\b`,
	)
)

// Sanitize redacts sensitive data from msgs. The returned slice
// is parallel to the input: same length, same roles, same order.
// Pure: no I/O, deterministic for a given input.
func Sanitize(msgs []Message) ([]Message, Counts) {
	var counts Counts
	out := make([]Message, len(msgs))
	for i, m := range msgs {
		out[i] = Message{
			Role:    m.Role,
			Content: sanitizeText(m.Content, &counts),
		}
	}
	return out, counts
}

func sanitizeText(text string, counts *Counts) string {
	text = dbURLRe.ReplaceAllStringFunc(text, func(string) string {
		counts.DatabaseURLs++
		return "[REDACTED_DB_URL]"
	})

	text = envVarRe.ReplaceAllStringFunc(text, func(match string) string {
		counts.EnvVars++
		name := envVarRe.FindStringSubmatch(match)[1]
		return name + "=[REDACTED_ENV_VALUE]"
	})

	for _, re := range credentialRes {
		text = re.ReplaceAllStringFunc(text, func(string) string {
			counts.Credentials++
			return "[REDACTED_CREDENTIAL]"
		})
	}

	text = pathRe.ReplaceAllStringFunc(text, func(string) string {
		counts.Paths++
		return "[REDACTED_PATH]"
	})

	text = urlRe.ReplaceAllStringFunc(text, func(string) string {
		counts.URLs++
		return "[REDACTED_URL]"
	})

	text = emailRe.ReplaceAllStringFunc(text, func(string) string {
		counts.Emails++
		return "[REDACTED_EMAIL]"
	})

	text = ipv4Re.ReplaceAllStringFunc(text, func(string) string {
		counts.IPs++
		return "[REDACTED_IP]"
	})
	text = ipv6Re.ReplaceAllStringFunc(text, func(string) string {
		counts.IPs++
		return "[REDACTED_IP]"
	})

	return text
}
