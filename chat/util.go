// Copyright 2023 @moguf.com All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file

package chat

import "unsafe"

// strToBytes views the bytes of str without copying. The result must not be
// mutated, so it is only handed to writers.
func strToBytes(str string) []byte {
	return unsafe.Slice(unsafe.StringData(str), len(str))
}
