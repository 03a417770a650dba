package records

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// rawRecord is one PGN game before interpretation: lower-cased tag names and
// the movetext lines joined with newlines.
type rawRecord struct {
	tags  map[string]string
	moves strings.Builder
}

// readRecords splits PGN text into records. A new record starts at every
// [Event tag.
func readRecords(r io.Reader) ([]*rawRecord, error) {
	var out []*rawRecord
	var cur *rawRecord

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[Event ") || (cur == nil && strings.HasPrefix(line, "[")) {
			cur = &rawRecord{tags: make(map[string]string)}
			out = append(out, cur)
		}
		if cur == nil {
			cur = &rawRecord{tags: make(map[string]string)}
			out = append(out, cur)
		}
		if line[0] == '[' {
			if name, value, ok := parseTag(line); ok {
				cur.tags[strings.ToLower(name)] = value
				continue
			}
		}
		cur.moves.WriteString(line)
		cur.moves.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read pgn: %w", err)
	}
	return out, nil
}

// parseTag reads a tag pair such as [White "Carlsen, Magnus"].
func parseTag(line string) (name, value string, ok bool) {
	if !strings.HasSuffix(line, "]") {
		return "", "", false
	}
	body := strings.TrimSpace(line[1 : len(line)-1])
	name, rest, ok := strings.Cut(body, " ")
	if !ok {
		return "", "", false
	}
	rest = strings.TrimSpace(rest)
	if len(rest) < 2 || rest[0] != '"' || rest[len(rest)-1] != '"' {
		return "", "", false
	}
	value = strings.ReplaceAll(rest[1:len(rest)-1], `\"`, `"`)
	return name, value, true
}

// ReadPGN reads every game in r. When username matches the White or Black tag
// the game's player_color is set accordingly.
func ReadPGN(r io.Reader, username string) ([]Game, error) {
	recs, err := readRecords(r)
	games := make([]Game, 0, len(recs))
	for _, rec := range recs {
		games = append(games, rec.game(username))
	}
	return games, err
}

func (rec *rawRecord) game(username string) Game {
	t := rec.tags
	g := Game{
		ID:       t["gameid"],
		URL:      firstNonEmpty(t["link"], urlOrEmpty(t["site"])),
		Result:   t["result"],
		StartFEN: t["fen"],
		EndFEN:   t["currentposition"],
		Moves:    strings.TrimSpace(rec.moves.String()),
		Tags:     t,
	}
	if username != "" {
		switch {
		case strings.EqualFold(t["white"], username):
			g.PlayerColor = "white"
		case strings.EqualFold(t["black"], username):
			g.PlayerColor = "black"
		}
	}
	g.EndTime = endTime(t)
	return g
}

func endTime(t map[string]string) int64 {
	layouts := [][2]string{
		{t["enddate"], t["endtime"]},
		{t["utcdate"], t["utctime"]},
		{t["date"], "00:00:00"},
	}
	for _, l := range layouts {
		if l[0] == "" || strings.Contains(l[0], "?") {
			continue
		}
		clock := l[1]
		if clock == "" {
			clock = "00:00:00"
		}
		ts, err := time.Parse("2006.01.02 15:04:05", l[0]+" "+clock)
		if err == nil {
			return ts.Unix()
		}
	}
	return 0
}

func urlOrEmpty(s string) string {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ReadPGNFile reads a .pgn or zstd-compressed .pgn.zst file.
func ReadPGNFile(path, username string) ([]Game, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open zstd %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}
	games, err := ReadPGN(r, username)
	if err != nil {
		return games, fmt.Errorf("%s: %w", path, err)
	}
	return games, nil
}

// StudyFromPGN reads a study export where every PGN game is one chapter.
func StudyFromPGN(name, studyAs string, r io.Reader) (*Study, error) {
	recs, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	s := &Study{Name: name, StudyAs: studyAs}
	for _, rec := range recs {
		s.Studies = append(s.Studies, Chapter{
			Event:    rec.tags["event"],
			StartFEN: rec.tags["fen"],
			Moves:    strings.TrimSpace(rec.moves.String()),
			Tags:     rec.tags,
		})
	}
	if _, err := s.Color(); err != nil {
		return nil, err
	}
	return s, nil
}

// IsPGNFile reports whether name has a .pgn or .pgn.zst extension.
func IsPGNFile(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".pgn") || strings.HasSuffix(name, ".pgn.zst")
}
