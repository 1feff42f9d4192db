package mcpserver

// DataFormatContract describes the canonical on-disk calendar data format
// for LLM consumers that read or reason about the raw data file.
const DataFormatContract = `# Dagaz Calendar Data Format Contract

Dagaz stores whole-day events as one line of text per event.

## Line structure

` + "```" + `
MM/DD/YYYY [id] message
MM/DD/YYYY [id] >noteid message
` + "```" + `

- **Date** is the event day, zero-padded: ` + "`" + `07/04/2024` + "`" + `.
  Events always span the whole day; there is no time-of-day component.
- **id** is a small integer in square brackets, followed by one space.
- **>noteid** (optional) marks an attached note. ` + "`" + `noteid` + "`" + ` is the
  40-character hex identifier of a file in the ` + "`" + `notes/` + "`" + ` directory,
  followed by one space. The marker is only present when a note is attached.
- **message** is the rest of the line, free-form text without newlines.

## Fingerprints

Every event has a fingerprint: the SHA-1 hex digest of its serialized line.
Tools accept any unique prefix of a fingerprint, like abbreviated VCS
commit hashes. Moving an event to another day changes its line and
therefore its fingerprint; mutating tools return the new one.

## Ordering

The calendar is sorted by day first, then by message (byte order).
Events that compare equal keep their relative insertion order.

## Notes

Note bodies live outside the data file, one file per note under
` + "`" + `notes/` + "`" + `, named by the SHA-1 of their content. Two events with the
same note body share one file.

## Example

` + "```" + `
01/20/2025 [1] weekly standup
02/14/2025 [1] >aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d dinner reservation
02/14/2025 [2] send flowers
` + "```" + `
`
