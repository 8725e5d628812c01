// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509der

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"
)

func TestReadElementStrictness(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr bool
	}{
		{
			name:  "minimal definite length",
			input: []byte{0x30, 0x03, 0x02, 0x01, 0x05},
		},
		{
			name:    "indefinite length rejected",
			input:   []byte{0x30, 0x80, 0x02, 0x01, 0x05, 0x00, 0x00},
			wantErr: true,
		},
		{
			name: "non-minimal long form rejected",
			// Length 3 encoded as 0x81 0x03 where one byte would do.
			input:   []byte{0x30, 0x81, 0x03, 0x02, 0x01, 0x05},
			wantErr: true,
		},
		{
			name:    "truncated body rejected",
			input:   []byte{0x30, 0x05, 0x02, 0x01},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := cryptobyte.String(tt.input)
			var body cryptobyte.String
			err := ReadElement(&s, &body, TagSequence)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTrailingDataDetection(t *testing.T) {
	s := cryptobyte.String([]byte{0x30, 0x00, 0xFF})
	var body cryptobyte.String
	require.NoError(t, ReadElement(&s, &body, TagSequence))
	assert.ErrorIs(t, CheckEmpty(s), ErrTrailingData)
}

func TestReadBigInt(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    int64
		wantErr bool
	}{
		{name: "zero", input: []byte{0x02, 0x01, 0x00}, want: 0},
		{name: "positive", input: []byte{0x02, 0x01, 0x7F}, want: 127},
		{name: "high bit needs leading zero", input: []byte{0x02, 0x02, 0x00, 0x80}, want: 128},
		{name: "negative", input: []byte{0x02, 0x01, 0xFF}, want: -1},
		{
			name: "padded positive rejected",
			// 0x00 0x05 pads a value that fits in one byte.
			input:   []byte{0x02, 0x02, 0x00, 0x05},
			wantErr: true,
		},
		{name: "empty integer rejected", input: []byte{0x02, 0x00}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := cryptobyte.String(tt.input)
			n, err := ReadBigInt(&s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Int64())
		})
	}
}

func TestReadBool(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    bool
		wantErr bool
	}{
		{name: "true", input: []byte{0x01, 0x01, 0xFF}, want: true},
		{name: "false", input: []byte{0x01, 0x01, 0x00}, want: false},
		{
			name: "BER truthy value rejected",
			// Any non-zero value other than 0xFF is BER, not DER.
			input:   []byte{0x01, 0x01, 0x01},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := cryptobyte.String(tt.input)
			got, err := ReadBool(&s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadBitString(t *testing.T) {
	tests := []struct {
		name       string
		input      []byte
		wantBits   int
		wantErr    bool
		wantBitSet []int
	}{
		{
			name:       "keyUsage style bitset",
			input:      []byte{0x03, 0x02, 0x02, 0x84},
			wantBits:   6,
			wantBitSet: []int{0, 5},
		},
		{
			name:     "whole bytes",
			input:    []byte{0x03, 0x03, 0x00, 0xAB, 0xCD},
			wantBits: 16,
		},
		{
			name:    "padding bits set rejected",
			input:   []byte{0x03, 0x02, 0x02, 0x85},
			wantErr: true,
		},
		{
			name:    "padding count above 7 rejected",
			input:   []byte{0x03, 0x02, 0x08, 0x00},
			wantErr: true,
		},
		{
			name:    "empty contents rejected",
			input:   []byte{0x03, 0x00},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := cryptobyte.String(tt.input)
			bs, err := ReadBitString(&s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBits, bs.BitLength)
			for _, bit := range tt.wantBitSet {
				assert.Equal(t, 1, bs.At(bit), "bit %d", bit)
			}
		})
	}
}

func TestBitStringRightAlign(t *testing.T) {
	bs := BitString{Bytes: []byte{0x84}, BitLength: 6}
	assert.Equal(t, []byte{0x21}, bs.RightAlign())

	whole := BitString{Bytes: []byte{0xAB, 0xCD}, BitLength: 16}
	assert.Equal(t, []byte{0xAB, 0xCD}, whole.RightAlign())
}

func TestReadTime(t *testing.T) {
	encode := func(tag byte, value string) []byte {
		out := []byte{tag, byte(len(value))}
		return append(out, value...)
	}

	tests := []struct {
		name    string
		input   []byte
		want    time.Time
		wantErr bool
	}{
		{
			name:  "utc time",
			input: encode(0x17, "260601120000Z"),
			want:  time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "utc time 20th century rollover",
			// Two-digit years 50-99 land in 19xx.
			input: encode(0x17, "990601120000Z"),
			want:  time.Date(1999, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name:  "generalized time",
			input: encode(0x18, "20500601120000Z"),
			want:  time.Date(2050, 6, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			name:    "utc time without seconds rejected",
			input:   encode(0x17, "2606011200Z"),
			wantErr: true,
		},
		{
			name:    "offset instead of zulu rejected",
			input:   encode(0x17, "260601120000+0100"),
			wantErr: true,
		},
		{
			name:    "fractional seconds rejected",
			input:   encode(0x18, "20260601120000.5Z"),
			wantErr: true,
		},
		{
			name:    "wrong tag rejected",
			input:   []byte{0x02, 0x01, 0x00},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := cryptobyte.String(tt.input)
			got, err := ReadTime(&s)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}
