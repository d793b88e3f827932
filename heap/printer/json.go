package printer

import (
	"encoding/json"
	"fmt"

	"github.com/joshuapare/heapkit/heap"
)

// jsonArena represents an arena in JSON format.
type jsonArena struct {
	Seq        int         `json:"seq"`
	Base       string      `json:"base,omitempty"`
	Size       uint        `json:"size"`
	Used       *uint       `json:"used,omitempty"`
	Free       *uint       `json:"free,omitempty"`
	FreeBlocks *int        `json:"free_blocks,omitempty"`
	Blocks     []jsonBlock `json:"blocks"`
}

// jsonBlock represents a block in JSON format.
type jsonBlock struct {
	Addr   string `json:"addr,omitempty"`
	Offset int    `json:"offset"`
	Size   uint   `json:"size"`
	Free   bool   `json:"free"`
	First  bool   `json:"first"`
	Last   bool   `json:"last"`
}

func (p *Printer) printJSON(layout []heap.ArenaLayout) error {
	arenas := make([]jsonArena, 0, len(layout))
	for _, a := range layout {
		ja := jsonArena{
			Seq:    a.Seq,
			Size:   a.Size,
			Blocks: make([]jsonBlock, 0, len(a.Blocks)),
		}
		if p.opts.ShowAddresses {
			ja.Base = fmt.Sprintf("0x%X", a.Base)
		}
		if p.opts.Summary {
			used, free, freeBlocks := arenaTotals(a)
			ja.Used, ja.Free, ja.FreeBlocks = &used, &free, &freeBlocks
		}
		for _, b := range a.Blocks {
			jb := jsonBlock{
				Offset: b.Offset,
				Size:   b.Size,
				Free:   b.Free,
				First:  b.First,
				Last:   b.Last,
			}
			if p.opts.ShowAddresses {
				jb.Addr = fmt.Sprintf("0x%X", b.Addr)
			}
			ja.Blocks = append(ja.Blocks, jb)
		}
		arenas = append(arenas, ja)
	}

	data, err := json.MarshalIndent(struct {
		Arenas []jsonArena `json:"arenas"`
	}{arenas}, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.writer, "%s\n", data)
	return err
}
