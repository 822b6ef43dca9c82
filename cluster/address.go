// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package cluster

import (
	"fmt"
	"net"

	"github.com/hashicorp/go-sockaddr"
)

// advertiseIP returns the address peers should use to reach a node bound to bindAddr.
// Wildcard binds resolve to a private interface address, then a public one.
func advertiseIP(bindAddr string) (string, error) {
	ip := net.ParseIP(bindAddr)
	if ip == nil {
		return "", fmt.Errorf("invalid bind address=(%s)", bindAddr)
	}

	if !ip.IsUnspecified() {
		return ip.String(), nil
	}

	address, err := sockaddr.GetPrivateIP()
	if err != nil {
		return "", fmt.Errorf("failed to get private interface addresses: %w", err)
	}

	if address == "" {
		address, err = sockaddr.GetPublicIP()
		if err != nil {
			return "", fmt.Errorf("failed to get public interface addresses: %w", err)
		}
	}

	if address == "" {
		return "", fmt.Errorf("no private IP address found, and explicit IP not provided")
	}
	return address, nil
}
