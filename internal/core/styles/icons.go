package styles

var (
	IconCheckList = " "
	IconDone      = "✓"
	IconOpen      = "○"
	IconCursor    = "›"
)
