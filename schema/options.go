package schema

// TextIndexingOption controls how a text field is handled by the
// (out-of-scope) tokenizer and inverted index. It is a closed, stably
// ordered enum, per original_source/bridge/src/schema/options.cpp. The
// JSON encoding maps each value to its name through textIndexingNames
// by ordinal, so this ordering must stay fixed; no binary encoding of
// the option exists.
type TextIndexingOption uint8

const (
	Unindexed TextIndexingOption = iota
	Untokenized
	TokenizedNoFreq
	TokenizedWithFreq
	TokenizedWithFreqAndPosition
)

var textIndexingNames = [...]string{
	Unindexed:                    "unindexed",
	Untokenized:                  "untokenized",
	TokenizedNoFreq:              "tokenized_no_freq",
	TokenizedWithFreq:            "tokenized_with_freq",
	TokenizedWithFreqAndPosition: "tokenized_with_freq_and_position",
}

func (o TextIndexingOption) String() string {
	if int(o) < len(textIndexingNames) {
		return textIndexingNames[o]
	}
	return "unknown"
}

func textIndexingFromString(s string) (TextIndexingOption, bool) {
	for i, name := range textIndexingNames {
		if name == s {
			return TextIndexingOption(i), true
		}
	}
	return 0, false
}

// TextOptions configures a Text field entry.
type TextOptions struct {
	Indexing TextIndexingOption
	Stored   bool
}

// NumericOptions configures a Numeric field entry.
type NumericOptions struct {
	Indexed bool
	Fast    bool
	Stored  bool
}
