package schedule_constants

import "time"

// NumSlots is the number of 15-minute increments in a day. Slot 0 is
// midnight, slot 95 is 11:45 PM.
const NumSlots = 96

const SlotMinutes = 15

// slotLabels maps slot index -> 12-hour clock display string. Built once
// at process start; treat as immutable.
var slotLabels [NumSlots]string

func init() {
	base := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < NumSlots; i++ {
		slotLabels[i] = base.Add(time.Duration(i) * SlotMinutes * time.Minute).Format("3:04 PM")
	}
}

// ValidSlot reports whether i is a usable time slot index.
func ValidSlot(i int) bool {
	return i >= 0 && i < NumSlots
}

// SlotLabel returns the display string for a slot, e.g. 40 -> "10:00 AM".
// Out-of-range slots return "".
func SlotLabel(i int) string {
	if !ValidSlot(i) {
		return ""
	}
	return slotLabels[i]
}
