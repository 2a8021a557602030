package plasma

import "testing"

func TestPosition_RoundTrip(t *testing.T) {
	cases := []struct {
		blk, txIndex, outIndex uint64
	}{
		{0, 0, 0},
		{1, 0, 0},
		{1, 0, 1},
		{1, 9999, 255},
		{42, 17, 1},
		{maxBlockNumber, 9999, 255},
	}
	for _, c := range cases {
		pos, err := NewPosition(c.blk, c.txIndex, c.outIndex)
		if err != nil {
			t.Fatalf("NewPosition(%d,%d,%d): %v", c.blk, c.txIndex, c.outIndex, err)
		}
		blk, txIndex, outIndex, err := pos.Decode()
		if err != nil {
			t.Fatalf("Decode(%d): %v", pos, err)
		}
		if blk != c.blk || txIndex != c.txIndex || outIndex != c.outIndex {
			t.Fatalf("round trip mismatch: got (%d,%d,%d) want (%d,%d,%d)", blk, txIndex, outIndex, c.blk, c.txIndex, c.outIndex)
		}
	}
}

func TestPosition_DepositBlockOne(t *testing.T) {
	pos, err := NewPosition(1, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if uint64(pos) != 1_000_000_000 {
		t.Fatalf("expected 1_000_000_000, got %d", pos)
	}
}

func TestPosition_Ordering(t *testing.T) {
	ordered := [][3]uint64{
		{1, 0, 0},
		{1, 0, 1},
		{1, 1, 0},
		{1, 9999, 255},
		{2, 0, 0},
	}
	var prev Position
	for i, c := range ordered {
		pos, err := NewPosition(c[0], c[1], c[2])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if i > 0 && pos <= prev {
			t.Fatalf("ordering violated at %v: %d <= %d", c, pos, prev)
		}
		prev = pos
	}
}

func TestNewPosition_Rejections(t *testing.T) {
	cases := []struct {
		name                   string
		blk, txIndex, outIndex uint64
		code                   ErrorCode
	}{
		{"tx index too large", 1, 10000, 0, POS_ERR_RANGE},
		{"output index too large", 1, 0, 256, POS_ERR_RANGE},
		{"block overflow", maxBlockNumber + 1, 0, 0, POS_ERR_OVERFLOW},
	}
	for _, c := range cases {
		_, err := NewPosition(c.blk, c.txIndex, c.outIndex)
		if CodeOf(err) != c.code {
			t.Fatalf("%s: got %v, want code %s", c.name, err, c.code)
		}
	}
}

func TestPosition_DecodeRejections(t *testing.T) {
	// tx_index decodes to 50000, beyond the 0..9999 field range.
	bad := Position(50000 * TxOffset)
	if _, _, _, err := bad.Decode(); CodeOf(err) != POS_ERR_RANGE {
		t.Fatalf("expected POS_ERR_RANGE for tx_index, got %v", err)
	}
	// output_index decodes to 9999, beyond the 0..255 field range.
	bad = Position(9999)
	if _, _, _, err := bad.Decode(); CodeOf(err) != POS_ERR_RANGE {
		t.Fatalf("expected POS_ERR_RANGE for output_index, got %v", err)
	}
}
