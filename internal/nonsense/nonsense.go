// Package nonsense implements a small pronounceability test used to spot
// randomly generated usernames. It scores a word by how many of its
// letter pairs occur in ordinary English text and names; words dominated
// by implausible pairs, vowel-starved words, and words with long
// consonant runs are reported as nonsense.
package nonsense

import (
	"errors"
	"strings"
)

// ErrUnscorable is returned for input the analyzer cannot score.
var ErrUnscorable = errors.New("nonsense: string cannot be scored")

const minLength = 6

// Letter pairs that occur with meaningful frequency in English words and
// common given names. Pairs absent from this table count against the word.
const commonPairs = `
th he in er an re on at en nd ti es or te of ed is it al ar st to nt ng
se ha as ou io le ve co me de hi ri ro ic ne ea ra ce li ch ll be ma si
om ur ca el ta la ns di fo ho pe ec pr no ct us ac ot il tr ly nc et ut
ss so rs un lo wa ge ie wh ee wi em ad ol rt po we na ul ni ts mo ow pa
im mi ai sh ir su id os iv ia am fi ci vi pl ig tu ev ld ry mp fe bl ab
gh ty op wo sa ay ex ke fr oo av ag if ap gr od bo sp rd do uc bu ei ov
by rm ep tt oc fa ef cu rn sc gi gn ue ck ug du ua ud ub ui dr dy ba bi
br ga go gu gl hy hu ja jo ju ka ki ko ku kl kr lu lv lt mb my nn nna no
nu oa ob oe og oh oi ok oy pi pu ph qu rr rb rc rg rk rl rp sk sl sm sn
sw sy tw ud um up va vo ya ye yo yn za ze zo au aw ax dd ff gg pp cc eg
ek ix ja je ji nk nz lk lm ln wr wn wl xa xe za zi ys yr yl ew eu dw cl
cr dl fl ht hn hm kn lw nw ps pt rv rw sb sq tl tn vr ws yt
`

var pairTable = func() map[string]struct{} {
	m := make(map[string]struct{})
	for _, p := range strings.Fields(commonPairs) {
		m[p] = struct{}{}
	}
	return m
}()

// Nonsense reports whether the word is likely an unpronounceable, randomly
// generated string rather than a plausible name or word.
//
// It returns ErrUnscorable for input it cannot meaningfully score: words
// shorter than six characters or containing anything but ASCII letters.
func Nonsense(word string) (bool, error) {
	if len(word) < minLength {
		return false, ErrUnscorable
	}
	for i := 0; i < len(word); i++ {
		c := word[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false, ErrUnscorable
		}
	}

	w := strings.ToLower(word)

	vowels := 0
	consonantRun := 0
	maxConsonantRun := 0
	for i := 0; i < len(w); i++ {
		if isVowel(w[i]) {
			vowels++
			consonantRun = 0
			continue
		}
		consonantRun++
		if consonantRun > maxConsonantRun {
			maxConsonantRun = consonantRun
		}
	}

	rare := 0
	pairs := len(w) - 1
	for i := 0; i < pairs; i++ {
		if _, ok := pairTable[w[i:i+2]]; !ok {
			rare++
		}
	}

	switch {
	case vowels*5 < len(w): // fewer than one vowel per five letters
		return true, nil
	case maxConsonantRun >= 5:
		return true, nil
	case rare*2 > pairs: // more than half the letter pairs are implausible
		return true, nil
	}
	return false, nil
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}
