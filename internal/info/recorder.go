/*
Copyright 2024.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package info

//go:generate go run go.uber.org/mock/mockgen -source=recorder.go -destination=recorder_mock.go -package=info RequestRecorder

// RequestRecorder counts served info requests. prometheus.Counter satisfies it.
type RequestRecorder interface {
	// Inc increments the count by one. It must be safe for concurrent use.
	Inc()
}
