package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"repitch/internal/pipeline"
)

// videoTable renders discovered videos with a footer counting them and their
// cached thumbnails.
func videoTable(videos []pipeline.Video, showIDs bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Footer = text.FormatDefault

	header := table.Row{"Title", "File", "Thumbnail"}
	if showIDs {
		header = append(header, "ID")
	}
	tw.AppendHeader(header)

	thumbs := 0
	for _, v := range videos {
		row := table.Row{v.Title, v.Path, yesNo(v.ThumbnailReady)}
		if showIDs {
			row = append(row, string(v.ID))
		}
		if v.ThumbnailReady {
			thumbs++
		}
		tw.AppendRow(row)
	}

	footer := table.Row{fmt.Sprintf("%d videos", len(videos)), "", fmt.Sprintf("%d cached", thumbs)}
	if showIDs {
		footer = append(footer, "")
	}
	tw.AppendFooter(footer)

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Thumbnail", Align: text.AlignCenter, AlignFooter: text.AlignCenter},
	})
	return tw.Render()
}
