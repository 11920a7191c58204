// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package search finds every record dated a given day in a sorted index.
//
// Two interpolation-guided algorithms are provided:
//   - InterpolationStep probes where the target should sit if dates were spread
//     uniformly, and on a miss walks toward it in sqrt-sized steps, one step at a time
//   - ImprovedInterpolationStep walks the same steps but doubles the stride on
//     every failed check
//
// Either walk narrows the bracket before the next probe. Once a probe lands on
// the target, the surrounding run of equal dates is collected and Assemble
// restores the records' original load order.
//
// The Searcher type wraps both algorithms with date parsing, timing, logging
// and concurrent batch queries.
package search
