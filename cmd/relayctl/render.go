package main

import (
	"io"
	"room-relay/domain"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func renderRooms(out io.Writer, rooms []domain.Room) {
	table := newTable(out, []string{"Room", "Peers", "Members"})
	for _, room := range rooms {
		members := lo.Map(room.Peers, func(peer domain.Member, _ int) string {
			return peer.Name + " (" + string(peer.ID) + ")"
		})
		table.Append([]string{
			color.Cyan.Render(string(room.ID)),
			strconv.Itoa(len(room.Peers)),
			strings.Join(members, ", "),
		})
	}
	table.Render()
}

func renderHistory(out io.Writer, messages []domain.ChatMessage) {
	table := newTable(out, []string{"#", "Name", "Message"})
	for i, message := range messages {
		table.Append([]string{strconv.Itoa(i + 1), color.Yellow.Render(message.Name), message.Message})
	}
	table.Render()
}
