// Copyright 2022 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package target

import "golang.org/x/sys/cpu"

// HostFeatures reports a subset of the running host's CPU feature flags,
// generalizing the teacher's single `cpu.RISCV64.HasV` vector-support check
// into one flag per architecture. No compiler stage or CLI flag reads it.
type HostFeatures struct {
	RISCVVector bool
	ARM64SVE    bool
	AMD64AVX2   bool
	AMD64AVX512 bool
}

// DetectHostFeatures reads host CPU feature bits via golang.org/x/sys/cpu,
// the same detection mechanism the teacher uses to decide whether to emit
// RISC-V vector typedefs into the C parser prologue.
func DetectHostFeatures() HostFeatures {
	return HostFeatures{
		RISCVVector: cpu.RISCV64.HasV,
		ARM64SVE:    cpu.ARM64.HasSVE,
		AMD64AVX2:   cpu.X86.HasAVX2,
		AMD64AVX512: cpu.X86.HasAVX512,
	}
}
