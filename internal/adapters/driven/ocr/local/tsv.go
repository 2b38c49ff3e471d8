package local

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/clausewise/internal/core/domain"
)

// Tesseract TSV levels.
const (
	tsvLevelBlock = 2
	tsvLevelWord  = 5
)

// tsvColumns is the column count of tesseract's TSV output:
// level page_num block_num par_num line_num word_num left top width height conf text.
const tsvColumns = 12

// tsvPage is one page of parsed tesseract TSV output.
type tsvPage struct {
	text       string
	confidence float64
	blocks     []domain.TextBlock
}

type lineKey struct{ block, par, line int }

// parseTSV rebuilds text, mean word confidence and block geometry from
// tesseract TSV output. Words are joined by spaces, lines by newlines and
// paragraphs by blank lines.
func parseTSV(out string, page int) tsvPage {
	var (
		result   tsvPage
		sb       strings.Builder
		last     lineKey
		started  bool
		sum      float64
		n        int
		blockIdx = map[int]int{}
	)

	for i, ln := range strings.Split(out, "\n") {
		if i == 0 || strings.TrimSpace(ln) == "" {
			continue
		}
		cols := strings.Split(strings.TrimRight(ln, "\r"), "\t")
		if len(cols) < tsvColumns {
			continue
		}
		nums := make([]int, 10)
		for j := 0; j < 10; j++ {
			nums[j], _ = strconv.Atoi(cols[j])
		}
		level, blockNum := nums[0], nums[2]
		box := domain.BoundingBox{X: nums[6], Y: nums[7], Width: nums[8], Height: nums[9]}

		switch level {
		case tsvLevelBlock:
			blockIdx[blockNum] = len(result.blocks)
			result.blocks = append(result.blocks, domain.TextBlock{Page: page, Kind: "text", Box: box})

		case tsvLevelWord:
			word := strings.TrimSpace(strings.Join(cols[11:], "\t"))
			if word == "" {
				continue
			}
			key := lineKey{block: blockNum, par: nums[3], line: nums[4]}
			switch {
			case !started:
				started = true
			case key.block != last.block || key.par != last.par:
				sb.WriteString("\n\n")
			case key.line != last.line:
				sb.WriteString("\n")
			default:
				sb.WriteString(" ")
			}
			sb.WriteString(word)
			last = key

			conf, err := strconv.ParseFloat(cols[10], 64)
			if err == nil && conf >= 0 {
				sum += conf
				n++
				if bi, ok := blockIdx[blockNum]; ok {
					b := &result.blocks[bi]
					if b.Text != "" {
						b.Text += " "
					}
					b.Text += word
					b.Confidence += conf
				}
			}
		}
	}

	// Block confidence is accumulated as a sum above; turn it into a mean.
	for i := range result.blocks {
		words := len(strings.Fields(result.blocks[i].Text))
		if words > 0 {
			result.blocks[i].Confidence = result.blocks[i].Confidence / float64(words) / 100
		}
	}
	kept := result.blocks[:0]
	for _, b := range result.blocks {
		if b.Text != "" {
			kept = append(kept, b)
		}
	}
	result.blocks = kept

	result.text = sb.String()
	if n > 0 {
		result.confidence = sum / float64(n) / 100
	}
	return result
}
