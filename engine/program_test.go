// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/hashicorp/go-unpack/engine/command"
)

func TestProgramArgs(t *testing.T) {
	zip7 := &format{Format: Format{Name: fileExtensionArj, Program: command.Zip7}}
	arc := &format{Format: Format{Name: fileExtensionArc, Program: command.Arc}}

	tests := []struct {
		name   string
		f      *format
		dst    string
		policy Collision
		want   []string
	}{
		{name: "7zz test", f: zip7, want: []string{"t", "-y", "/src/a.arj"}},
		{name: "7zz rename", f: zip7, dst: "/dst", policy: CollisionRename, want: []string{"x", "-y", "-aou", "-o/dst", "/src/a.arj"}},
		{name: "7zz overwrite", f: zip7, dst: "/dst", policy: CollisionOverwrite, want: []string{"x", "-y", "-aoa", "-o/dst", "/src/a.arj"}},
		{name: "7zz skip", f: zip7, dst: "/dst", policy: CollisionSkip, want: []string{"x", "-y", "-aos", "-o/dst", "/src/a.arj"}},
		{name: "arc test", f: arc, want: []string{"t", "/src/a.arj"}},
		{name: "arc extract", f: arc, dst: "/dst", want: []string{"x", "a.arj"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := programArgs(test.f, "/src/a.arj", test.dst, test.policy)
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("programArgs() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestRunProgramMissing(t *testing.T) {
	f := &format{Format: Format{Name: "test", Program: "unpack-program-that-does-not-exist"}}
	err := runProgram(context.Background(), NewConfig(), f, "a.arj", "", CollisionRename)
	if !errors.Is(err, ErrProgramMissing) {
		t.Errorf("runProgram() error = %v, want %v", err, ErrProgramMissing)
	}
	if !IsKind(err, KindFormat) {
		t.Errorf("runProgram() kind = %v, want %v", err, KindFormat)
	}
}
