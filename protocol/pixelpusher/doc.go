// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package pixelpusher implements the PixelPusher-specific portions of the
// wire protocol: the device block that trails the universal discovery
// header, and the pixel data packets pushed to a device's data port.
package pixelpusher
