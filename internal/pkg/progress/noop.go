package progress

// NoopProgress ничего не отображает.
type NoopProgress struct{}

// Start ничего не делает.
func (NoopProgress) Start(string) {}

// Update ничего не делает.
func (NoopProgress) Update(int64, string) {}

// Finish ничего не делает.
func (NoopProgress) Finish() {}
