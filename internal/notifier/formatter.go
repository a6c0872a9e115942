package notifier

import (
	"fmt"
	"html"
	"strings"

	"github.com/homerun-app/homerun/internal/cli"
	"github.com/homerun-app/homerun/internal/model"
)

// FormatHomeRun announces a met weekly target.
func FormatHomeRun(snap model.Snapshot) string {
	var b strings.Builder
	b.WriteString("⚾ <b>Home run!</b>\n\n")
	b.WriteString(fmt.Sprintf("Weekly target of %s met.\n", cli.FormatMoney(snap.WeeklyTarget)))
	b.WriteString(fmt.Sprintf("Weeks hit: %d | Home runs left: %d\n", snap.WeeksGoalHit, snap.HomeRunsLeft))
	b.WriteString(fmt.Sprintf("Saved %s of %s (%s)\n",
		cli.FormatMoney(snap.Saved), cli.FormatMoney(snap.Goal), cli.FormatPercent(snap.Percent)))
	return b.String()
}

// FormatGoalReached celebrates the downpayment goal.
func FormatGoalReached(snap model.Snapshot) string {
	return fmt.Sprintf("🏠 <b>Downpayment goal reached!</b>\n\nSaved %s toward a %s goal.\n",
		cli.FormatMoney(snap.Saved), cli.FormatMoney(snap.Goal))
}

// FormatWeeklyDigest summarises the latest state and recent weeks.
func FormatWeeklyDigest(snap model.Snapshot, weeks []model.WeeklyTotal, top []model.CategoryTotal) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>homerun weekly</b> | %s\n\n", snap.At.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Progress: %s (%s of %s)\n",
		cli.FormatPercent(snap.Percent), cli.FormatMoney(snap.Saved), cli.FormatMoney(snap.Goal)))
	b.WriteString(fmt.Sprintf("Weekly target: %s\n", cli.FormatMoney(snap.WeeklyTarget)))
	b.WriteString(fmt.Sprintf("This week so far: %s\n", cli.FormatMoney(snap.Accumulator)))
	b.WriteString(fmt.Sprintf("Weeks hit: %d | Home runs left: %d\n", snap.WeeksGoalHit, snap.HomeRunsLeft))

	if len(weeks) > 0 {
		b.WriteString("\n<b>Recent weeks:</b>\n")
		for i, w := range weeks {
			if i == 4 {
				break
			}
			b.WriteString(fmt.Sprintf("  %s  %s (%d tx)\n", cli.FormatWeek(w.Start), cli.FormatSigned(w.Total), w.Count))
		}
	}

	if len(top) > 0 {
		b.WriteString("\n<b>Top categories:</b>\n")
		for i, c := range top {
			if i == 3 {
				break
			}
			b.WriteString(fmt.Sprintf("  %s  %s\n", html.EscapeString(c.Category), cli.FormatSigned(c.Total)))
		}
	}
	return b.String()
}
