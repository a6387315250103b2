package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"versioning-backend/src/contracts"
	"versioning-backend/src/sanitize"
)

type column struct {
	title string
	width int
	value func(b contracts.CiBuild) string
}

var columns = []column{
	{title: "BUILD ID", width: 48, value: func(b contracts.CiBuild) string { return b.BuildID }},
	{title: "JOB", width: 16, value: func(b contracts.CiBuild) string { return b.JobID }},
	{title: "IMAGE", width: 6, value: func(b contracts.CiBuild) string { return string(b.ImageType) }},
	{title: "STATUS", width: 9, value: func(b contracts.CiBuild) string { return string(b.Status) }},
	{title: "FAILS", width: 5, value: func(b contracts.CiBuild) string { return strconv.Itoa(b.Meta.FailureCount) }},
	{title: "MODIFIED", width: 20, value: func(b contracts.CiBuild) string { return b.ModifiedDate.UTC().Format(time.RFC3339) }},
}

const statusColumn = 3

// Table renders builds as a fixed-width, status-colored table.
func Table(builds []contracts.CiBuild, palette Palette) string {
	var sb strings.Builder

	header := make([]string, len(columns))
	for i, col := range columns {
		header[i] = palette.headerStyle().Render(cell(col.title, col.width))
	}
	sb.WriteString(strings.Join(header, " "))
	sb.WriteString("\n")

	for _, build := range builds {
		row := make([]string, len(columns))
		for i, col := range columns {
			text := cell(col.value(build), col.width)
			if i == statusColumn {
				text = palette.statusStyle(build.Status).Render(text)
			}
			row[i] = text
		}
		sb.WriteString(strings.Join(row, " "))
		sb.WriteString("\n")
	}

	sb.WriteString(palette.secondaryStyle().Render(summary(builds)))
	sb.WriteString("\n")
	return sb.String()
}

// Detail renders a single build with its failure and docker info.
func Detail(build contracts.CiBuild, palette Palette) string {
	label := palette.secondaryStyle()
	line := func(name, value string) string {
		return label.Render(runewidth.FillRight(name, 18)) + value + "\n"
	}

	var sb strings.Builder
	sb.WriteString(palette.headerStyle().Render(build.BuildID) + "\n")
	sb.WriteString(line("status", palette.statusStyle(build.Status).Render(string(build.Status))))
	sb.WriteString(line("job", build.JobID))
	sb.WriteString(line("image type", string(build.ImageType)))
	sb.WriteString(line("base os", build.UnityVersionInfo.BaseOS))
	sb.WriteString(line("unity version", build.UnityVersionInfo.UnityVersion))
	sb.WriteString(line("target platform", build.UnityVersionInfo.TargetPlatform))
	sb.WriteString(line("repo version", build.UnityVersionInfo.RepoVersion))
	sb.WriteString(line("failures", strconv.Itoa(build.Meta.FailureCount)))
	sb.WriteString(line("last start", formatTime(&build.Meta.LastBuildStart)))
	sb.WriteString(line("last failure", formatTime(build.Meta.LastBuildFailure)))
	sb.WriteString(line("published", formatTime(build.Meta.PublishedDate)))
	if build.Failure != nil {
		sb.WriteString(line("failure reason", sanitize.StripANSI(build.Failure.Reason)))
	}
	if info := build.DockerInfo; info != nil {
		sb.WriteString(line("image", fmt.Sprintf("%s/%s:%s", info.ImageRepo, info.ImageName, info.SpecificTag)))
		sb.WriteString(line("friendly tag", info.FriendlyTag))
		sb.WriteString(line("digest", info.Hash))
	}
	return sb.String()
}

// cell truncates or pads text to exactly width terminal cells.
func cell(text string, width int) string {
	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, "…")
	}
	return runewidth.FillRight(text, width)
}

func summary(builds []contracts.CiBuild) string {
	counts := map[contracts.BuildStatus]int{}
	for _, b := range builds {
		counts[b.Status]++
	}
	return fmt.Sprintf("%d builds: %d started, %d failed, %d published",
		len(builds), counts[contracts.StatusStarted], counts[contracts.StatusFailed], counts[contracts.StatusPublished])
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
