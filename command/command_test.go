package command

import "testing"

func TestTagValid(t *testing.T) {
	valid := []Tag{TagCopy, TagDict, TagLiteral, TagBlockSwitchLiteral,
		TagBlockSwitchCommand, TagBlockSwitchDist, TagPredictionMode, TagEndOfStream}
	for _, tag := range valid {
		if !tag.Valid() {
			t.Errorf("Tag(%d).Valid() = false, want true", tag)
		}
	}
	reserved := []Tag{0, 8, 9, 10, 11, 12, 13, 14}
	for _, tag := range reserved {
		if tag.Valid() {
			t.Errorf("Tag(%d).Valid() = true, want false (reserved)", tag)
		}
	}
}

func TestTagForCommand(t *testing.T) {
	if got := TagForCommand(CopyCommand{}, false); got != TagCopy {
		t.Errorf("TagForCommand(CopyCommand, false) = %v, want Copy", got)
	}
	if got := TagForCommand(CopyCommand{}, true); got != TagEndOfStream {
		t.Errorf("TagForCommand(_, true) = %v, want EndOfStream", got)
	}
	if got := TagForCommand(nil, true); got != TagEndOfStream {
		t.Errorf("TagForCommand(nil, true) = %v, want EndOfStream", got)
	}
}

func TestCommandTags(t *testing.T) {
	cases := []struct {
		cmd  Command
		want Tag
	}{
		{CopyCommand{}, TagCopy},
		{DictCommand{}, TagDict},
		{LiteralCommand{}, TagLiteral},
		{BlockSwitchLiteralCommand{}, TagBlockSwitchLiteral},
		{BlockSwitchCommandCommand{}, TagBlockSwitchCommand},
		{BlockSwitchDistanceCommand{}, TagBlockSwitchDist},
		{PredictionModeCommand{}, TagPredictionMode},
	}
	for _, c := range cases {
		if got := c.cmd.Tag(); got != c.want {
			t.Errorf("%T.Tag() = %v, want %v", c.cmd, got, c.want)
		}
	}
}
