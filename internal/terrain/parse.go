package terrain

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Garsondee/hexsight/internal/hexgrid"
)

// LoadBoard reads a .board file from disk. The board is named after the file.
func LoadBoard(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := ParseBoard(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return b, nil
}

// ParseBoard reads the .board text format:
//
//	size 16 17
//	hex 0101 0 "" ""
//	hex 0102 1 "woods:2;building:3;water:1" "theme"
//
// Lines before "size" and unknown directives are ignored, as are terrain
// features the engine does not read (rough, pavement, foliage_elev and so on).
func ParseBoard(r io.Reader) (*Board, error) {
	var board *Board
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line == "end" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "size "):
			parts := strings.Fields(line)
			if len(parts) < 3 {
				return nil, fmt.Errorf("line %d: malformed size %q", lineNo, line)
			}
			w, errW := strconv.Atoi(parts[1])
			h, errH := strconv.Atoi(parts[2])
			if errW != nil || errH != nil || w <= 0 || h <= 0 {
				return nil, fmt.Errorf("line %d: malformed size %q", lineNo, line)
			}
			board = NewBoard(w, h)

		case strings.HasPrefix(line, "hex "):
			if board == nil {
				return nil, fmt.Errorf("line %d: hex before size", lineNo)
			}
			if err := parseHexLine(board, line); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if board == nil {
		return nil, fmt.Errorf("board has no size line")
	}
	return board, nil
}

// parseHexLine handles: hex XXYY elevation "terrain;terrain" "theme"
func parseHexLine(board *Board, line string) error {
	parts := strings.Fields(line)
	if len(parts) < 3 {
		return fmt.Errorf("malformed hex %q", line)
	}
	c, err := hexgrid.ParseCoord(parts[1])
	if err != nil {
		return err
	}
	hex := board.Get(c)
	if hex == nil {
		return fmt.Errorf("hex %s: %w", c, ErrOutOfBounds)
	}
	elev, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("hex %s: elevation %q", c, parts[2])
	}
	hex.Elevation = elev

	if len(parts) < 4 {
		return nil
	}
	terrainStr := strings.Trim(parts[3], "\"")
	for _, feat := range strings.Split(terrainStr, ";") {
		feat = strings.TrimSpace(feat)
		if feat == "" {
			continue
		}
		f, level, ok := parseFeature(feat)
		if !ok {
			continue
		}
		if level > hex.Levels[f] {
			hex.Levels[f] = level
		}
	}
	return nil
}

// parseFeature reads "type:level" or "type:level:extra".
func parseFeature(s string) (Feature, int, bool) {
	parts := strings.Split(s, ":")
	name := strings.ToLower(parts[0])
	level := 1
	if len(parts) >= 2 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			level = n
		}
	}

	switch name {
	case "woods":
		return Woods, level, true
	case "building", "bldg_elev":
		return Building, level, true
	case "water":
		return Water, level, true
	default:
		return 0, 0, false
	}
}

// WriteBoard writes b in the format ParseBoard reads. Units are not part of the
// file format and are dropped.
func WriteBoard(w io.Writer, b *Board) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "size %d %d\n", b.Width, b.Height)
	for _, hex := range b.grid {
		var feats []string
		for _, f := range Features {
			if lvl := hex.Levels[f]; lvl > 0 {
				feats = append(feats, fmt.Sprintf("%s:%d", f, lvl))
			}
		}
		fmt.Fprintf(bw, "hex %s %d \"%s\" \"\"\n", hex.Coord, hex.Elevation, strings.Join(feats, ";"))
	}
	fmt.Fprintln(bw, "end")
	return bw.Flush()
}
