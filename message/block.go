// Copyright 2025 Kadir Pekel
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

// Package message defines the tagged content-block model shared by every
// other package in this module: accumulators build blocks, the reasoning
// context assembles them into messages, the ReAct loop appends them to
// memory, and the event stream carries them to callers.
package message

// Block is a closed sum type over the kinds of content a message can carry.
// isBlock is unexported so no type outside this package can implement Block,
// giving callers exhaustive switches instead of an open interface hierarchy.
type Block interface {
	isBlock()
}

// Text is a plain text fragment.
type Text struct {
	Text string
}

func (Text) isBlock() {}

// Thinking is model-internal reasoning. It is never sent back to a model on
// a subsequent turn (formatters must strip it, see model.Formatter).
type Thinking struct {
	Thinking string
}

func (Thinking) isBlock() {}

// ToolUse is a tool invocation request emitted by a model.
type ToolUse struct {
	ID   string
	Name string
	// Input is the parsed JSON-object arguments, keyed by parameter name.
	Input map[string]any
	// Content is the raw argument string as streamed by the model, kept
	// around for providers that require echoing it back verbatim.
	Content  string
	Metadata map[string]any
}

func (ToolUse) isBlock() {}

// ToolResult is the outcome of executing a ToolUse.
type ToolResult struct {
	ID     string
	Name   string
	Output []Block
}

func (ToolResult) isBlock() {}

// Source is the payload of a multimodal block: either a remote URL or
// inline base64 data.
type Source interface {
	isSource()
}

// URLSource references external media by URL.
type URLSource struct {
	URL string
}

func (URLSource) isSource() {}

// Base64Source carries inline media. Serializers must treat Data opaquely;
// see Materialize for providers that require a file path instead.
type Base64Source struct {
	MediaType string
	Data      []byte
}

func (Base64Source) isSource() {}

// Image is an image block.
type Image struct {
	Source Source
}

func (Image) isBlock() {}

// Audio is an audio block.
type Audio struct {
	Source Source
}

func (Audio) isBlock() {}

// Video is a video block.
type Video struct {
	Source Source
}

func (Video) isBlock() {}

// NewText builds a Text block.
func NewText(text string) Block { return Text{Text: text} }

// NewThinking builds a Thinking block.
func NewThinking(thinking string) Block { return Thinking{Thinking: thinking} }

// NewToolUse builds a ToolUse block.
func NewToolUse(id, name string, input map[string]any, content string) Block {
	return ToolUse{ID: id, Name: name, Input: input, Content: content}
}

// NewToolResult builds a ToolResult block.
func NewToolResult(id, name string, output ...Block) Block {
	return ToolResult{ID: id, Name: name, Output: output}
}

// NewImageURL builds an Image block backed by a URL.
func NewImageURL(url string) Block { return Image{Source: URLSource{URL: url}} }

// NewImageBase64 builds an Image block backed by inline base64 data.
func NewImageBase64(mediaType string, data []byte) Block {
	return Image{Source: Base64Source{MediaType: mediaType, Data: data}}
}
