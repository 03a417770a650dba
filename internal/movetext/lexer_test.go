package movetext

import (
	"errors"
	"reflect"
	"testing"
)

func TestLex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []Kind
		texts []string
	}{
		{
			name:  "plain",
			input: "1. e4 e5 2. Nf3",
			kinds: []Kind{MoveNumber, Move, Move, MoveNumber, Move},
			texts: []string{"1.", "e4", "e5", "2.", "Nf3"},
		},
		{
			name:  "glued numbers",
			input: "1.e4 1...e5",
			kinds: []Kind{MoveNumber, Move, MoveNumber, Move},
			texts: []string{"1.", "e4", "1...", "e5"},
		},
		{
			name:  "comment and nag",
			input: "e4 {best by test} $1 e5",
			kinds: []Kind{Move, Comment, NAG, Move},
			texts: []string{"e4", "best by test", "$1", "e5"},
		},
		{
			name:  "variation",
			input: "e5 (1... c5 2. Nf3) 2. Nf3",
			kinds: []Kind{Move, Open, MoveNumber, Move, MoveNumber, Move, Close, MoveNumber, Move},
			texts: []string{"e5", "(", "1...", "c5", "2.", "Nf3", ")", "2.", "Nf3"},
		},
		{
			name:  "nested close",
			input: "(a6 (b6)) d6",
			kinds: []Kind{Open, Move, Open, Move, Close, Close, Move},
			texts: []string{"(", "a6", "(", "b6", ")", ")", "d6"},
		},
		{
			name:  "castle with zeros and result",
			input: "0-0 0-0-0 1-0",
			kinds: []Kind{Move, Move, Result},
			texts: []string{"0-0", "0-0-0", "1-0"},
		},
		{
			name:  "line comment",
			input: "e4 ; king pawn\ne5 *",
			kinds: []Kind{Move, Comment, Move, Result},
			texts: []string{"e4", "king pawn", "e5", "*"},
		},
		{
			name:  "standalone suffix",
			input: "e4 !? e5",
			kinds: []Kind{Move, NAG, Move},
			texts: []string{"e4", "!?", "e5"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("Lex: %v", err)
			}
			var kinds []Kind
			var texts []string
			for _, tok := range toks {
				kinds = append(kinds, tok.Kind)
				texts = append(texts, tok.Text)
			}
			if !reflect.DeepEqual(kinds, tt.kinds) {
				t.Errorf("kinds = %v, want %v", kinds, tt.kinds)
			}
			if !reflect.DeepEqual(texts, tt.texts) {
				t.Errorf("texts = %q, want %q", texts, tt.texts)
			}
		})
	}
}

func TestLex_UnterminatedComment(t *testing.T) {
	if _, err := Lex("e4 { never closed"); !errors.Is(err, ErrUnterminatedComment) {
		t.Errorf("Lex() error = %v, want ErrUnterminatedComment", err)
	}
}

func TestMainLine(t *testing.T) {
	toks, err := Lex("1. e4 {[%clk 0:03:00]} e5 (1... c5 (1... e6) 2. Nf3) 2. Nf3 Nc6 1/2-1/2")
	if err != nil {
		t.Fatal(err)
	}
	got := MainLine(toks)
	want := []string{"e4", "e5", "Nf3", "Nc6"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MainLine() = %q, want %q", got, want)
	}
}

func TestDescribe(t *testing.T) {
	tests := map[string]string{
		"$1":   "Good move",
		"!?":   "Interesting move",
		"$14":  "White is slightly better",
		"$999": "$999",
	}
	for in, want := range tests {
		if got := Describe(in); got != want {
			t.Errorf("Describe(%q) = %q, want %q", in, got, want)
		}
	}
}
