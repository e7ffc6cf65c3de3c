package gpu

// Resource is anything that can be the subject of a barrier.
type Resource interface {
	// Label returns the debug name of the resource.
	//
	// Returns:
	//   - string: the label given at creation
	Label() string
}

// TextureDesc describes a 2D texture.
type TextureDesc struct {
	Label        string
	Width        uint32
	Height       uint32
	Format       Format
	Usage        TextureUsage
	InitialState ResourceState
}

// Texture is a 2D image resource.
type Texture interface {
	Resource

	// Desc returns the description the texture was created from.
	//
	// Returns:
	//   - TextureDesc: the creation description
	Desc() TextureDesc
}

// BufferDesc describes a linear buffer.
type BufferDesc struct {
	Label string
	Size  uint64
	Heap  HeapType
	Usage BufferUsage
}

// Buffer is a linear memory resource.
type Buffer interface {
	Resource

	// Size returns the size of the buffer in bytes.
	//
	// Returns:
	//   - uint64: the buffer size
	Size() uint64

	// Heap returns the heap the buffer was allocated on.
	//
	// Returns:
	//   - HeapType: the heap type
	Heap() HeapType

	// Write copies data into the buffer at the given byte offset. Only upload heap buffers accept
	// CPU writes; the data is visible to every command list submitted afterwards.
	//
	// Parameters:
	//   - offset: the byte offset to write at
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: ErrNotMappable for default heap buffers, or an error if the range is out of bounds
	Write(offset uint64, data []byte) error
}

// VertexBufferView binds a range of a buffer as vertex input.
type VertexBufferView struct {
	Buffer Buffer
	Offset uint64
	Size   uint64
	Stride uint32
}

// IndexBufferView binds a range of a buffer as index input.
type IndexBufferView struct {
	Buffer Buffer
	Offset uint64
	Size   uint64
	Format IndexFormat
}

// Viewport maps normalized device coordinates onto the render targets.
type Viewport struct {
	X, Y          float32
	Width, Height float32
	MinDepth      float32
	MaxDepth      float32
}

// Rect is an integer rectangle used for scissoring.
type Rect struct {
	Left, Top, Right, Bottom uint32
}

// Queue accepts closed command lists and fence signals.
type Queue interface {
	// ExecuteCommandLists submits the lists in order. Each list is validated against the tracked
	// resource states before its work reaches the GPU.
	//
	// Parameters:
	//   - lists: the closed command lists to execute
	//
	// Returns:
	//   - error: an error if a list is still open or fails validation
	ExecuteCommandLists(lists ...CommandList) error

	// Signal sets the fence to value once all previously submitted work has completed.
	//
	// Parameters:
	//   - fence: the fence to signal
	//   - value: the value the fence takes on completion
	//
	// Returns:
	//   - error: an error if the signal could not be enqueued
	Signal(fence Fence, value uint64) error
}

// Fence is a monotonically increasing counter written by the GPU.
type Fence interface {
	// CompletedValue returns the last value the GPU has signaled.
	//
	// Returns:
	//   - uint64: the completed value
	CompletedValue() uint64

	// Wait blocks until the completed value reaches value. There is no timeout.
	//
	// Parameters:
	//   - value: the value to wait for
	//
	// Returns:
	//   - error: an error if the device was lost while waiting
	Wait(value uint64) error
}

// SwapChain owns the images shown on screen.
type SwapChain interface {
	// BufferCount returns the number of back buffers.
	BufferCount() int

	// CurrentBackBufferIndex returns the index of the back buffer the next frame renders into.
	CurrentBackBufferIndex() int

	// BackBuffer returns back buffer i. Back buffers start in ResourceStatePresent.
	BackBuffer(i int) Texture

	// Format returns the texel format of the back buffers.
	Format() Format

	// Present queues the current back buffer for display and advances the back buffer index.
	//
	// Returns:
	//   - error: an error if the current back buffer is not in ResourceStatePresent
	Present() error
}

// Device creates resources and owns the queue and swap chain.
type Device interface {
	// CreateBuffer allocates a buffer.
	//
	// Parameters:
	//   - desc: the buffer description
	//
	// Returns:
	//   - Buffer: the new buffer, tracked in ResourceStateCommon
	//   - error: an error if allocation fails
	CreateBuffer(desc BufferDesc) (Buffer, error)

	// CreateTexture allocates a 2D texture in desc.InitialState.
	//
	// Parameters:
	//   - desc: the texture description
	//
	// Returns:
	//   - Texture: the new texture
	//   - error: an error if allocation fails or the initial state is not allowed by the usage
	CreateTexture(desc TextureDesc) (Texture, error)

	// CreateDescriptorHeap allocates a heap of capacity empty slots.
	CreateDescriptorHeap(kind DescriptorHeapType, capacity int) (DescriptorHeap, error)

	// CreateRootSignature builds the binding layout shared by pipelines and descriptor tables.
	CreateRootSignature(desc RootSignatureDesc) (RootSignature, error)

	// CreateGraphicsPipeline compiles a pipeline state object.
	CreateGraphicsPipeline(desc GraphicsPipelineDesc) (Pipeline, error)

	// CreateCommandList allocates a command list in the closed state.
	CreateCommandList(label string) (CommandList, error)

	// CreateFence allocates a fence with the given completed value.
	CreateFence(initial uint64) (Fence, error)

	// Queue returns the direct queue.
	Queue() Queue

	// SwapChain returns the swap chain, or nil for headless devices.
	SwapChain() SwapChain

	// ConstantBufferAlignment returns the alignment required for constant buffer view offsets.
	ConstantBufferAlignment() uint64

	// Release frees all device objects.
	Release()
}

// AlignUp rounds size up to a multiple of alignment, which must be a power of two.
func AlignUp(size, alignment uint64) uint64 {
	if alignment == 0 {
		return size
	}
	return (size + alignment - 1) &^ (alignment - 1)
}
