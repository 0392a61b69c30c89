package llm

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// requestLog mirrors every chat request/response pair into a JSON file for
// offline inspection of what the model actually saw. The file is rewritten on
// each append so a crashed run still leaves a readable log.
type requestLog struct {
	path    string
	entries []map[string]json.RawMessage
}

func newRequestLog(dir string) *requestLog {
	name := "llm_log_" + time.Now().Format("20060102_150405") + ".json"
	return &requestLog{path: filepath.Join(dir, name)}
}

// record appends one entry. A nil receiver disables logging; marshal or
// write failures are swallowed since logging must never break a run.
func (l *requestLog) record(kind string, body []byte) {
	if l == nil {
		return
	}
	if !json.Valid(body) {
		quoted, err := json.Marshal(string(body))
		if err != nil {
			return
		}
		body = quoted
	}
	key := fmt.Sprintf("%s_%d", kind, len(l.entries)/2)
	l.entries = append(l.entries, map[string]json.RawMessage{key: json.RawMessage(body)})

	data, err := json.MarshalIndent(l.entries, "", "    ")
	if err != nil {
		return
	}
	_ = os.WriteFile(l.path, data, 0o644)
}
