package recorder

// Plugin reacts to recorder lifecycle and audio events and may trigger
// Model.Stop or report errors through the callback channels it
// registers in Activate. Plugins are owned by the Core; their lifetime
// equals the recorder's plugin slot.
type Plugin interface {
	Activate(model *Model)
	Deactivate(model *Model)
}

// BasePlugin supplies the default no-op Deactivate. Embed it in a plugin
// that has nothing to clean up on deactivation.
type BasePlugin struct{}

func (BasePlugin) Deactivate(*Model) {}
