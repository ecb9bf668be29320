package main

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

const dumpDoc = `Social Media Message Dump

Usage:
  socialmedia -dump
Prints every message as CSV: id,postedBy,messageText,timePosted`

// dumpMessages writes all messages to w as CSV rows.
func dumpMessages(ctx context.Context, w io.Writer, store MessageStore) error {
	messages, err := store.FindAll(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	for _, m := range messages {
		record := []string{
			strconv.Itoa(m.ID),
			strconv.Itoa(m.PostedBy),
			m.MessageText,
			strconv.FormatInt(m.TimePosted, 10),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "writing csv")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}
