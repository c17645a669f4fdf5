package expiry

import (
	"fmt"
	"strings"

	"license-tracker/pkg/notify"
	"license-tracker/services/license"
)

const unknownOwner = "Unknown"

func contactMessage(l *license.License, daysLeft int, to string) notify.Message {
	owner := l.PrimaryOwner
	if owner == "" {
		owner = unknownOwner
	}

	var b strings.Builder
	b.WriteString("License Alert\n\n")
	fmt.Fprintf(&b, "%s expires in %d days\n\n", l.Name, daysLeft)
	fmt.Fprintf(&b, "Expiry Date: %s\n", l.ExpiryDate)
	fmt.Fprintf(&b, "Owner: %s\n", owner)
	fmt.Fprintf(&b, "Contact: %s\n\n", l.PrimaryEmail)
	b.WriteString("Please renew this license as soon as possible to avoid disruption.\n")

	return notify.Message{
		To:      to,
		Subject: fmt.Sprintf("License '%s' expires in %d days", l.Name, daysLeft),
		Body:    b.String(),
	}
}

func chatMessage(l *license.License, daysLeft int) notify.Message {
	owner := l.PrimaryOwner
	if owner == "" {
		owner = unknownOwner
	}

	text := fmt.Sprintf(
		"**License Alert**\n`%s` expires in **%d days**\nExpiry Date: `%s`\nOwner: @`%s`\nPlease renew ASAP.",
		l.Name, daysLeft, l.ExpiryDate, owner,
	)
	return notify.Message{To: owner, Body: text}
}
