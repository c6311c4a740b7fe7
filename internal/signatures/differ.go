package signatures

// Diff compares the signature counts of every system present in both
// snapshots. Systems seen for the first time never produce an event.
// Events follow the order of current.
func Diff(previous, current Snapshot) []DiffEvent {
	var events []DiffEvent
	for _, name := range current.names {
		before, ok := previous.entries[name]
		if !ok {
			continue
		}
		now := current.entries[name]

		var direction Direction
		switch {
		case now.Sigs > before.Sigs:
			direction = Spawned
		case now.Sigs < before.Sigs:
			direction = Despawned
		default:
			continue
		}

		events = append(events, DiffEvent{
			System:       name,
			Direction:    direction,
			Jumps:        now.Jumps,
			Sigs:         now.Sigs,
			PreviousSigs: before.Sigs,
		})
	}
	return events
}
