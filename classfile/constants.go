package classfile

// ---------------------------------------------------------------------------
// Container format constants
// ---------------------------------------------------------------------------

// Magic is the four-byte signature that opens every class file.
var Magic = [4]byte{0xCA, 0xFE, 0xBA, 0xBE}

// Versions the model accepts. MinMajorVersion is JDK 1.0.2; files newer than
// MaxMajorVersion are rejected rather than misparsed, since later format
// revisions may add structures this model does not know how to preserve.
const (
	MinMajorVersion uint16 = 45
	MaxMajorVersion uint16 = 69
)

// ---------------------------------------------------------------------------
// Constant pool tags
// ---------------------------------------------------------------------------

// Tag identifies the kind of a constant pool entry.
type Tag byte

const (
	TagUtf8               Tag = 1
	TagInteger            Tag = 3
	TagFloat              Tag = 4
	TagLong               Tag = 5
	TagDouble             Tag = 6
	TagClass              Tag = 7
	TagString             Tag = 8
	TagFieldref           Tag = 9
	TagMethodref          Tag = 10
	TagInterfaceMethodref Tag = 11
	TagNameAndType        Tag = 12
	TagMethodHandle       Tag = 15
	TagMethodType         Tag = 16
	TagDynamic            Tag = 17
	TagInvokeDynamic      Tag = 18
	TagModule             Tag = 19
	TagPackage            Tag = 20
)

// String returns the conventional constant-pool name for a tag.
func (t Tag) String() string {
	switch t {
	case TagUtf8:
		return "Utf8"
	case TagInteger:
		return "Integer"
	case TagFloat:
		return "Float"
	case TagLong:
		return "Long"
	case TagDouble:
		return "Double"
	case TagClass:
		return "Class"
	case TagString:
		return "String"
	case TagFieldref:
		return "Fieldref"
	case TagMethodref:
		return "Methodref"
	case TagInterfaceMethodref:
		return "InterfaceMethodref"
	case TagNameAndType:
		return "NameAndType"
	case TagMethodHandle:
		return "MethodHandle"
	case TagMethodType:
		return "MethodType"
	case TagDynamic:
		return "Dynamic"
	case TagInvokeDynamic:
		return "InvokeDynamic"
	case TagModule:
		return "Module"
	case TagPackage:
		return "Package"
	default:
		return "Unknown"
	}
}

// ---------------------------------------------------------------------------
// Access flags
// ---------------------------------------------------------------------------

// Access flag bits shared by classes, fields and methods. Only the bits the
// model inspects are named; others pass through untouched.
const (
	AccPublic     uint16 = 0x0001
	AccPrivate    uint16 = 0x0002
	AccProtected  uint16 = 0x0004
	AccStatic     uint16 = 0x0008
	AccFinal      uint16 = 0x0010
	AccSuper      uint16 = 0x0020 // classes
	AccVolatile   uint16 = 0x0040 // fields
	AccTransient  uint16 = 0x0080 // fields
	AccNative     uint16 = 0x0100 // methods
	AccInterface  uint16 = 0x0200 // classes
	AccAbstract   uint16 = 0x0400
	AccSynthetic  uint16 = 0x1000
	AccAnnotation uint16 = 0x2000 // classes
	AccEnum       uint16 = 0x4000
)

// ---------------------------------------------------------------------------
// Attribute names the model treats structurally
// ---------------------------------------------------------------------------

const (
	AttrCode                 = "Code"
	AttrConstantValue        = "ConstantValue"
	AttrRuntimeVisibleAnns   = "RuntimeVisibleAnnotations"
	AttrRuntimeInvisibleAnns = "RuntimeInvisibleAnnotations"
)
