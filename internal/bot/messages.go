package bot

// User-facing replies.
const (
	msgVIPGranted       = "🎉 Congratulations! You are now a VIP user."
	msgVIPRequired      = "🔒 To use this bot, please send your VIP code."
	msgUnsupported      = "❌ Please send a text or voice message."
	msgProcessingFailed = "❌ Something went wrong while processing your message."
	msgTranscribeFailed = "⚠️ Sorry, I couldn't convert this voice message to text."
	msgSynthesizeFailed = "⚠️ Sorry, I couldn't convert your text to speech."
)
